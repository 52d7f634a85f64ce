package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hsik0225/dropthecode/internal/model"
	"github.com/hsik0225/dropthecode/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedCatalog(db))
	return db
}

func createMember(t *testing.T, db *gorm.DB, name string, role model.Role) *model.Member {
	t.Helper()

	member := &model.Member{
		Email:    name + "@github.com",
		Name:     name,
		ImageURL: "https://avatars.githubusercontent.com/u/1",
		Role:     role,
	}
	require.NoError(t, db.Create(member).Error)
	return member
}

func languageID(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()

	var language model.Language
	require.NoError(t, db.Where("name = ?", name).First(&language).Error)
	return language.ID
}

func skillID(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()

	var skill model.Skill
	require.NoError(t, db.Where("name = ?", name).First(&skill).Error)
	return skill.ID
}

func registerTeacher(t *testing.T, db *gorm.DB, name string, career int, languages, skills []string) *model.TeacherProfile {
	t.Helper()

	repo := NewTeacherRepository(db)
	member := createMember(t, db, name, model.RoleStudent)
	languageIDs := make([]uint, 0, len(languages))
	for _, lang := range languages {
		languageIDs = append(languageIDs, languageID(t, db, lang))
	}
	skillIDs := make([]uint, 0, len(skills))
	for _, skill := range skills {
		skillIDs = append(skillIDs, skillID(t, db, skill))
	}

	profile := &model.TeacherProfile{
		ID:      member.ID,
		Title:   name + "'s profile",
		Content: "happy to help",
		Career:  career,
	}
	require.NoError(t, repo.SaveWithSpecs(context.Background(), profile, languageIDs, skillIDs, true))
	return profile
}

func TestSaveWithSpecs_PromotesMember(t *testing.T) {
	db := newTestDB(t)
	repo := NewTeacherRepository(db)

	profile := registerTeacher(t, db, "alice", 3, []string{"java"}, []string{"spring"})

	var member model.Member
	require.NoError(t, db.First(&member, "id = ?", profile.ID).Error)
	assert.Equal(t, model.RoleTeacher, member.Role)

	saved, err := repo.FindByID(context.Background(), profile.ID)
	require.NoError(t, err)
	require.Len(t, saved.Languages, 1)
	assert.Equal(t, "java", saved.Languages[0].Name)
	require.Len(t, saved.Skills, 1)
	assert.Equal(t, "spring", saved.Skills[0].Name)
}

func TestSaveWithSpecs_ReplacesEdges(t *testing.T) {
	db := newTestDB(t)
	repo := NewTeacherRepository(db)
	ctx := context.Background()

	profile := registerTeacher(t, db, "alice", 3, []string{"javascript"}, []string{"vue", "react"})

	profile.Update("new title", "new content", 4)
	err := repo.SaveWithSpecs(ctx, profile,
		[]uint{languageID(t, db, "python")},
		[]uint{skillID(t, db, "django")},
		false)
	require.NoError(t, err)

	saved, err := repo.FindByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "new title", saved.Title)
	assert.Equal(t, 4, saved.Career)
	require.Len(t, saved.Languages, 1)
	assert.Equal(t, "python", saved.Languages[0].Name)
	require.Len(t, saved.Skills, 1)
	assert.Equal(t, "django", saved.Skills[0].Name)

	var edgeCount int64
	require.NoError(t, db.Model(&model.TeacherSkill{}).Where("teacher_profile_id = ?", profile.ID).Count(&edgeCount).Error)
	assert.Equal(t, int64(1), edgeCount)
}

func TestSaveWithSpecs_IdempotentOnSameEdges(t *testing.T) {
	db := newTestDB(t)
	repo := NewTeacherRepository(db)
	ctx := context.Background()

	profile := registerTeacher(t, db, "alice", 3, []string{"java"}, []string{"spring"})

	err := repo.SaveWithSpecs(ctx, profile,
		[]uint{languageID(t, db, "java")},
		[]uint{skillID(t, db, "spring")},
		false)
	require.NoError(t, err)

	var langEdges, skillEdges int64
	require.NoError(t, db.Model(&model.TeacherLanguage{}).Where("teacher_profile_id = ?", profile.ID).Count(&langEdges).Error)
	require.NoError(t, db.Model(&model.TeacherSkill{}).Where("teacher_profile_id = ?", profile.ID).Count(&skillEdges).Error)
	assert.Equal(t, int64(1), langEdges)
	assert.Equal(t, int64(1), skillEdges)
}

func TestSaveWithSpecs_KeepsReviewAggregate(t *testing.T) {
	db := newTestDB(t)
	repo := NewTeacherRepository(db)
	ctx := context.Background()

	profile := registerTeacher(t, db, "alice", 3, []string{"java"}, []string{"spring"})
	require.NoError(t, db.Model(&model.TeacherProfile{}).Where("id = ?", profile.ID).
		Updates(map[string]interface{}{"sum_review_count": 5, "average_review_time": 2.5}).Error)

	rewritten := &model.TeacherProfile{
		ID:      profile.ID,
		Title:   "back again",
		Content: "re-registered after leaving",
		Career:  4,
	}
	require.NoError(t, repo.SaveWithSpecs(ctx, rewritten,
		[]uint{languageID(t, db, "java")},
		[]uint{skillID(t, db, "spring")},
		true))

	saved, err := repo.FindByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "back again", saved.Title)
	assert.Equal(t, 5, saved.SumReviewCount)
	assert.Equal(t, 2.5, saved.AverageReviewTime)
}

func TestDelete_DemotesMember(t *testing.T) {
	db := newTestDB(t)
	repo := NewTeacherRepository(db)
	ctx := context.Background()

	profile := registerTeacher(t, db, "alice", 3, []string{"java"}, []string{"spring"})

	require.NoError(t, repo.Delete(ctx, profile.ID))

	_, err := repo.FindByID(ctx, profile.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var member model.Member
	require.NoError(t, db.First(&member, "id = ?", profile.ID).Error)
	assert.Equal(t, model.RoleStudent, member.Role)

	var edgeCount int64
	require.NoError(t, db.Model(&model.TeacherLanguage{}).Where("teacher_profile_id = ?", profile.ID).Count(&edgeCount).Error)
	assert.Equal(t, int64(0), edgeCount)
}

func TestApplyReviewStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewTeacherRepository(db)
	ctx := context.Background()

	profile := registerTeacher(t, db, "alice", 3, []string{"java"}, []string{"spring"})

	require.NoError(t, repo.ApplyReviewStats(ctx, nil, profile.ID, 48))
	require.NoError(t, repo.ApplyReviewStats(ctx, nil, profile.ID, 72))

	saved, err := repo.FindByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.SumReviewCount)
	assert.Equal(t, 2.5, saved.AverageReviewTime)
}

func TestApplyReviewStats_UnknownProfile(t *testing.T) {
	db := newTestDB(t)
	repo := NewTeacherRepository(db)

	err := repo.ApplyReviewStats(context.Background(), nil, uuid.New(), 24)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSearch_FiltersByLanguage(t *testing.T) {
	db := newTestDB(t)
	repo := NewTeacherRepository(db)
	ctx := context.Background()

	registerTeacher(t, db, "alice", 3, []string{"java"}, []string{"spring"})
	registerTeacher(t, db, "bob", 5, []string{"python"}, []string{"django"})

	profiles, total, err := repo.Search(ctx, SearchParams{
		LanguageID: languageID(t, db, "java"),
		SortColumn: "created_at",
		Limit:      10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, profiles, 1)
	assert.Equal(t, "alice", profiles[0].Member.Name)
}

func TestSearch_AllSkillsMustMatch(t *testing.T) {
	db := newTestDB(t)
	repo := NewTeacherRepository(db)
	ctx := context.Background()

	registerTeacher(t, db, "alice", 3, []string{"javascript"}, []string{"vue"})
	bob := registerTeacher(t, db, "bob", 5, []string{"javascript"}, []string{"vue", "react"})

	profiles, total, err := repo.Search(ctx, SearchParams{
		LanguageID:    languageID(t, db, "javascript"),
		SkillIDs:      []uint{skillID(t, db, "vue"), skillID(t, db, "react")},
		SkillMatchAll: true,
		SortColumn:    "created_at",
		Limit:         10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, profiles, 1)
	assert.Equal(t, bob.ID, profiles[0].ID)
}

func TestSearch_AnySkillMatches(t *testing.T) {
	db := newTestDB(t)
	repo := NewTeacherRepository(db)
	ctx := context.Background()

	registerTeacher(t, db, "alice", 3, []string{"javascript"}, []string{"vue"})
	registerTeacher(t, db, "bob", 5, []string{"javascript"}, []string{"react"})

	_, total, err := repo.Search(ctx, SearchParams{
		LanguageID:    languageID(t, db, "javascript"),
		SkillIDs:      []uint{skillID(t, db, "vue"), skillID(t, db, "react")},
		SkillMatchAll: false,
		SortColumn:    "created_at",
		Limit:         10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestSearch_MinCareer(t *testing.T) {
	db := newTestDB(t)
	repo := NewTeacherRepository(db)
	ctx := context.Background()

	registerTeacher(t, db, "alice", 3, []string{"java"}, nil)
	registerTeacher(t, db, "bob", 7, []string{"java"}, nil)

	profiles, total, err := repo.Search(ctx, SearchParams{
		LanguageID: languageID(t, db, "java"),
		MinCareer:  5,
		SortColumn: "career",
		Limit:      10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, profiles, 1)
	assert.Equal(t, "bob", profiles[0].Member.Name)
}

func TestSearch_SortByCareerDesc(t *testing.T) {
	db := newTestDB(t)
	repo := NewTeacherRepository(db)
	ctx := context.Background()

	registerTeacher(t, db, "alice", 3, []string{"java"}, nil)
	registerTeacher(t, db, "bob", 7, []string{"java"}, nil)
	registerTeacher(t, db, "carol", 5, []string{"java"}, nil)

	profiles, _, err := repo.Search(ctx, SearchParams{
		LanguageID: languageID(t, db, "java"),
		SortColumn: "career",
		SortDesc:   true,
		Limit:      10,
	})
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "bob", profiles[0].Member.Name)
	assert.Equal(t, "carol", profiles[1].Member.Name)
	assert.Equal(t, "alice", profiles[2].Member.Name)
}

func TestSearch_Pagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewTeacherRepository(db)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		registerTeacher(t, db, name, 1, []string{"java"}, nil)
	}

	profiles, total, err := repo.Search(ctx, SearchParams{
		LanguageID: languageID(t, db, "java"),
		SortColumn: "created_at",
		Offset:     4,
		Limit:      2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, profiles, 1)
}
