package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hsik0225/dropthecode/internal/modules/catalog/repository"
	"github.com/hsik0225/dropthecode/pkg/apperror"
	"github.com/hsik0225/dropthecode/pkg/database"
)

func newTestService(t *testing.T) CatalogService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedCatalog(db))
	return NewCatalogService(repository.NewCatalogRepository(db))
}

func TestGetAllLanguages(t *testing.T) {
	service := newTestService(t)

	resp, err := service.GetAllLanguages(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Languages, 5)

	names := make([]string, 0, len(resp.Languages))
	for _, lang := range resp.Languages {
		names = append(names, lang.Name)
	}
	assert.Equal(t, []string{"java", "javascript", "python", "kotlin", "c"}, names)
}

func TestResolveTechSpec(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	lang, skills, err := service.ResolveTechSpec(ctx, "javascript", []string{"vue", "react"})
	require.NoError(t, err)
	assert.Equal(t, "javascript", lang.Name)
	require.Len(t, skills, 2)
	assert.Equal(t, "vue", skills[0].Name)
	assert.Equal(t, "react", skills[1].Name)
}

func TestResolveTechSpec_UnknownLanguage(t *testing.T) {
	service := newTestService(t)

	_, _, err := service.ResolveTechSpec(context.Background(), "rust", nil)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestResolveTechSpec_UnknownSkill(t *testing.T) {
	service := newTestService(t)

	_, _, err := service.ResolveTechSpec(context.Background(), "java", []string{"rails"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestResolveTechSpec_SkillNotUnderLanguage(t *testing.T) {
	service := newTestService(t)

	_, _, err := service.ResolveTechSpec(context.Background(), "java", []string{"vue"})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestResolveTechSpec_LanguageWithoutSkills(t *testing.T) {
	service := newTestService(t)

	lang, skills, err := service.ResolveTechSpec(context.Background(), "c", nil)
	require.NoError(t, err)
	assert.Equal(t, "c", lang.Name)
	assert.Empty(t, skills)
}
