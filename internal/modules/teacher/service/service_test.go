package teacher

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hsik0225/dropthecode/internal/model"
	catalogRepo "github.com/hsik0225/dropthecode/internal/modules/catalog/repository"
	catalog "github.com/hsik0225/dropthecode/internal/modules/catalog/service"
	memberRepo "github.com/hsik0225/dropthecode/internal/modules/member/repository"
	"github.com/hsik0225/dropthecode/internal/modules/teacher/dto"
	"github.com/hsik0225/dropthecode/internal/modules/teacher/repository"
	"github.com/hsik0225/dropthecode/pkg/apperror"
	"github.com/hsik0225/dropthecode/pkg/database"
)

func newTestService(t *testing.T) (TeacherService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedCatalog(db))

	catalogSvc := catalog.NewCatalogService(catalogRepo.NewCatalogRepository(db))
	service := NewTeacherService(
		repository.NewTeacherRepository(db),
		memberRepo.NewMemberRepository(db),
		catalogSvc,
		nil,
		true,
	)
	return service, db
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

func validRegistration() dto.RegistrationRequest {
	return dto.RegistrationRequest{
		Title:   "five years of jvm work",
		Content: "I review spring backends",
		Career:  5,
		TechSpecs: []dto.TechSpecRequest{
			{Language: "java", Skills: []string{"spring"}},
		},
	}
}

func TestRegister(t *testing.T) {
	service, db := newTestService(t)
	student := createMember(t, db, "alice", model.RoleStudent)

	require.NoError(t, service.Register(context.Background(), student.ID, validRegistration()))

	resp, err := service.GetTeacher(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Name)
	assert.Equal(t, 5, resp.Career)
	require.Len(t, resp.TechSpecs, 1)
	assert.Equal(t, "java", resp.TechSpecs[0].Language)
	assert.Equal(t, []string{"spring"}, resp.TechSpecs[0].Skills)

	var member model.Member
	require.NoError(t, db.First(&member, "id = ?", student.ID).Error)
	assert.Equal(t, model.RoleTeacher, member.Role)
}

func TestRegister_AlreadyTeacher(t *testing.T) {
	service, db := newTestService(t)
	student := createMember(t, db, "alice", model.RoleStudent)

	require.NoError(t, service.Register(context.Background(), student.ID, validRegistration()))

	err := service.Register(context.Background(), student.ID, validRegistration())
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestRegister_DeletedMember(t *testing.T) {
	service, db := newTestService(t)
	deleted := createMember(t, db, "ghost", model.RoleDeleted)

	err := service.Register(context.Background(), deleted.ID, validRegistration())
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestRegister_SkillNotUnderLanguage(t *testing.T) {
	service, db := newTestService(t)
	student := createMember(t, db, "alice", model.RoleStudent)

	req := validRegistration()
	req.TechSpecs = []dto.TechSpecRequest{{Language: "java", Skills: []string{"vue"}}}

	err := service.Register(context.Background(), student.ID, req)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	// The failed registration must not have promoted the member.
	var member model.Member
	require.NoError(t, db.First(&member, "id = ?", student.ID).Error)
	assert.Equal(t, model.RoleStudent, member.Role)
}

func TestRegister_UnknownLanguage(t *testing.T) {
	service, db := newTestService(t)
	student := createMember(t, db, "alice", model.RoleStudent)

	req := validRegistration()
	req.TechSpecs = []dto.TechSpecRequest{{Language: "rust", Skills: nil}}

	err := service.Register(context.Background(), student.ID, req)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestRegister_DuplicateLanguage(t *testing.T) {
	service, db := newTestService(t)
	student := createMember(t, db, "alice", model.RoleStudent)

	req := validRegistration()
	req.TechSpecs = []dto.TechSpecRequest{
		{Language: "java", Skills: []string{"spring"}},
		{Language: "java", Skills: nil},
	}

	err := service.Register(context.Background(), student.ID, req)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestUpdateProfile_ReplacesSpecs(t *testing.T) {
	service, db := newTestService(t)
	student := createMember(t, db, "alice", model.RoleStudent)
	ctx := context.Background()

	require.NoError(t, service.Register(ctx, student.ID, validRegistration()))

	update := dto.RegistrationRequest{
		Title:   "now doing frontend",
		Content: "vue and react reviews",
		Career:  6,
		TechSpecs: []dto.TechSpecRequest{
			{Language: "javascript", Skills: []string{"vue", "react"}},
		},
	}
	require.NoError(t, service.UpdateProfile(ctx, student.ID, update))

	resp, err := service.GetTeacher(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "now doing frontend", resp.Title)
	assert.Equal(t, 6, resp.Career)
	require.Len(t, resp.TechSpecs, 1)
	assert.Equal(t, "javascript", resp.TechSpecs[0].Language)
	assert.ElementsMatch(t, []string{"vue", "react"}, resp.TechSpecs[0].Skills)
}

func TestUpdateProfile_WithoutProfile(t *testing.T) {
	service, db := newTestService(t)
	student := createMember(t, db, "alice", model.RoleStudent)

	err := service.UpdateProfile(context.Background(), student.ID, validRegistration())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDeregister(t *testing.T) {
	service, db := newTestService(t)
	student := createMember(t, db, "alice", model.RoleStudent)
	ctx := context.Background()

	require.NoError(t, service.Register(ctx, student.ID, validRegistration()))
	require.NoError(t, service.Deregister(ctx, student.ID))

	_, err := service.GetTeacher(ctx, student.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	var member model.Member
	require.NoError(t, db.First(&member, "id = ?", student.ID).Error)
	assert.Equal(t, model.RoleStudent, member.Role)
}

func TestSearch_LanguageRequired(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Search(context.Background(), dto.FilterRequest{})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestSearch_UnknownLanguageIsClientError(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Search(context.Background(), dto.FilterRequest{Language: "rust"})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	assert.False(t, errors.Is(err, apperror.ErrNotFound))
}

func TestSearch_UnknownSortField(t *testing.T) {
	service, _ := newTestService(t)

	filter := dto.FilterRequest{Language: "java"}
	filter.Sort = "name,asc"

	_, err := service.Search(context.Background(), filter)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestSearch_PageCount(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		student := createMember(t, db, name, model.RoleStudent)
		require.NoError(t, service.Register(ctx, student.ID, validRegistration()))
	}

	filter := dto.FilterRequest{Language: "java"}
	filter.Page = 1
	filter.Size = 2

	page, err := service.Search(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, page.TeacherProfiles, 2)
	assert.Equal(t, 2, page.PageCount)
}

func TestSearch_SkillFilter(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	vueOnly := createMember(t, db, "vue-only", model.RoleStudent)
	require.NoError(t, service.Register(ctx, vueOnly.ID, dto.RegistrationRequest{
		Title: "t", Content: "c", Career: 1,
		TechSpecs: []dto.TechSpecRequest{{Language: "javascript", Skills: []string{"vue"}}},
	}))

	both := createMember(t, db, "vue-and-react", model.RoleStudent)
	require.NoError(t, service.Register(ctx, both.ID, dto.RegistrationRequest{
		Title: "t", Content: "c", Career: 1,
		TechSpecs: []dto.TechSpecRequest{{Language: "javascript", Skills: []string{"vue", "react"}}},
	}))

	page, err := service.Search(ctx, dto.FilterRequest{Language: "javascript", Skills: "vue,react"})
	require.NoError(t, err)
	require.Len(t, page.TeacherProfiles, 1)
	assert.Equal(t, "vue-and-react", page.TeacherProfiles[0].Name)
}
