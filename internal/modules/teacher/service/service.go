package teacher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/hsik0225/dropthecode/internal/model"
	catalog "github.com/hsik0225/dropthecode/internal/modules/catalog/service"
	memberRepo "github.com/hsik0225/dropthecode/internal/modules/member/repository"
	"github.com/hsik0225/dropthecode/internal/modules/teacher/dto"
	"github.com/hsik0225/dropthecode/internal/modules/teacher/repository"
	"github.com/hsik0225/dropthecode/pkg/apperror"
	commonDto "github.com/hsik0225/dropthecode/pkg/dto"
)

// sortColumns whitelists the sortable fields of the capability search and
// maps the API names onto columns.
var sortColumns = map[string]string{
	"career":            "career",
	"sumReviewCount":    "sum_review_count",
	"averageReviewTime": "average_review_time",
	"createdAt":         "created_at",
}

// ProfileIndexer mirrors profile text into the free-text search index.
// Indexing is best-effort: the relational row is the source of truth.
type ProfileIndexer interface {
	IndexProfile(ctx context.Context, profile *model.TeacherProfile) error
	RemoveProfile(ctx context.Context, id uuid.UUID) error
	SearchProfiles(ctx context.Context, query string) ([]uuid.UUID, error)
}

type TeacherService interface {
	Register(ctx context.Context, actorID uuid.UUID, req dto.RegistrationRequest) error
	UpdateProfile(ctx context.Context, actorID uuid.UUID, req dto.RegistrationRequest) error
	Deregister(ctx context.Context, actorID uuid.UUID) error
	GetTeacher(ctx context.Context, id uuid.UUID) (*dto.TeacherProfileResponse, error)
	Search(ctx context.Context, filter dto.FilterRequest) (*dto.TeacherPageResponse, error)
	SearchByText(ctx context.Context, query string) ([]dto.TeacherProfileResponse, error)
	RecordCompletedReview(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, elapsedHours int64) error
}

type teacherService struct {
	repo          repository.TeacherRepository
	members       memberRepo.MemberRepository
	catalog       catalog.CatalogService
	indexer       ProfileIndexer
	sanitizer     *bluemonday.Policy
	skillMatchAll bool
}

func NewTeacherService(repo repository.TeacherRepository, members memberRepo.MemberRepository, catalogService catalog.CatalogService, indexer ProfileIndexer, skillMatchAll bool) TeacherService {
	return &teacherService{
		repo:          repo,
		members:       members,
		catalog:       catalogService,
		indexer:       indexer,
		sanitizer:     bluemonday.StrictPolicy(),
		skillMatchAll: skillMatchAll,
	}
}

func (s *teacherService) Register(ctx context.Context, actorID uuid.UUID, req dto.RegistrationRequest) error {
	member, err := s.members.FindByID(ctx, actorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("member %s: %w", actorID, apperror.ErrNotFound)
	}
	if err != nil {
		return err
	}

	if member.HasRole(model.RoleTeacher) {
		return fmt.Errorf("member is already registered as a teacher: %w", apperror.ErrConflict)
	}
	if member.HasRole(model.RoleDeleted) {
		return fmt.Errorf("deleted member cannot register as a teacher: %w", apperror.ErrValidation)
	}

	languageIDs, skillIDs, err := s.resolveTechSpecs(ctx, req.TechSpecs)
	if err != nil {
		return err
	}

	profile := &model.TeacherProfile{
		ID:      actorID,
		Title:   req.Title,
		Content: s.sanitizer.Sanitize(req.Content),
		Career:  req.Career,
	}

	if err := s.repo.SaveWithSpecs(ctx, profile, languageIDs, skillIDs, true); err != nil {
		return err
	}

	s.reindex(ctx, profile.ID)
	return nil
}

func (s *teacherService) UpdateProfile(ctx context.Context, actorID uuid.UUID, req dto.RegistrationRequest) error {
	profile, err := s.repo.FindByID(ctx, actorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("teacher profile %s: %w", actorID, apperror.ErrNotFound)
	}
	if err != nil {
		return err
	}

	languageIDs, skillIDs, err := s.resolveTechSpecs(ctx, req.TechSpecs)
	if err != nil {
		return err
	}

	profile.Update(req.Title, s.sanitizer.Sanitize(req.Content), req.Career)
	profile.Languages = nil
	profile.Skills = nil

	if err := s.repo.SaveWithSpecs(ctx, profile, languageIDs, skillIDs, false); err != nil {
		return err
	}

	s.reindex(ctx, profile.ID)
	return nil
}

func (s *teacherService) Deregister(ctx context.Context, actorID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, actorID); errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("teacher profile %s: %w", actorID, apperror.ErrNotFound)
	} else if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, actorID); err != nil {
		return err
	}

	if s.indexer != nil {
		if err := s.indexer.RemoveProfile(ctx, actorID); err != nil {
			log.Printf("failed to remove teacher %s from search index: %v", actorID, err)
		}
	}
	return nil
}

func (s *teacherService) GetTeacher(ctx context.Context, id uuid.UUID) (*dto.TeacherProfileResponse, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("teacher profile %s: %w", id, apperror.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	resp := dto.NewTeacherProfileResponse(profile)
	return &resp, nil
}

func (s *teacherService) Search(ctx context.Context, filter dto.FilterRequest) (*dto.TeacherPageResponse, error) {
	if filter.Language == "" {
		return nil, fmt.Errorf("language filter is required: %w", apperror.ErrValidation)
	}

	language, skills, err := s.catalog.ResolveTechSpec(ctx, filter.Language, filter.SkillNames())
	if err != nil {
		// An unknown catalog name in a search query is a client error, not a
		// missing resource.
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", err.Error(), apperror.ErrValidation)
		}
		return nil, err
	}

	sortColumn, sortDesc, err := parseSort(filter.Sort)
	if err != nil {
		return nil, err
	}

	filter.Normalize()

	skillIDs := make([]uint, 0, len(skills))
	for _, skill := range skills {
		skillIDs = append(skillIDs, skill.ID)
	}

	profiles, total, err := s.repo.Search(ctx, repository.SearchParams{
		LanguageID:    language.ID,
		SkillIDs:      skillIDs,
		SkillMatchAll: s.skillMatchAll,
		MinCareer:     filter.Career,
		SortColumn:    sortColumn,
		SortDesc:      sortDesc,
		Offset:        filter.Offset(),
		Limit:         filter.Size,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.TeacherPageResponse{
		TeacherProfiles: make([]dto.TeacherProfileResponse, 0, len(profiles)),
		PageCount:       commonDto.PageCount(total, filter.Size),
	}
	for _, profile := range profiles {
		resp.TeacherProfiles = append(resp.TeacherProfiles, dto.NewTeacherProfileResponse(profile))
	}
	return resp, nil
}

func (s *teacherService) SearchByText(ctx context.Context, query string) ([]dto.TeacherProfileResponse, error) {
	if s.indexer == nil {
		return nil, fmt.Errorf("free-text search is not configured: %w", apperror.ErrBadRequest)
	}

	ids, err := s.indexer.SearchProfiles(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]dto.TeacherProfileResponse, 0, len(ids))
	for _, id := range ids {
		profile, err := s.repo.FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue // index lag, the row is already gone
		}
		if err != nil {
			return nil, err
		}
		results = append(results, dto.NewTeacherProfileResponse(profile))
	}
	return results, nil
}

func (s *teacherService) RecordCompletedReview(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID, elapsedHours int64) error {
	return s.repo.ApplyReviewStats(ctx, tx, teacherID, elapsedHours)
}

// resolveTechSpecs validates the requested specs against the catalog and
// flattens them into id sets. Any unknown or misplaced name rejects the whole
// request.
func (s *teacherService) resolveTechSpecs(ctx context.Context, specs []dto.TechSpecRequest) ([]uint, []uint, error) {
	languageIDs := make([]uint, 0, len(specs))
	seenLanguages := make(map[uint]bool, len(specs))
	var skillIDs []uint
	seenSkills := make(map[uint]bool)

	for _, spec := range specs {
		language, skills, err := s.catalog.ResolveTechSpec(ctx, spec.Language, spec.Skills)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, nil, fmt.Errorf("%s: %w", err.Error(), apperror.ErrValidation)
			}
			return nil, nil, err
		}

		if seenLanguages[language.ID] {
			return nil, nil, fmt.Errorf("language %q listed twice: %w", language.Name, apperror.ErrValidation)
		}
		seenLanguages[language.ID] = true
		languageIDs = append(languageIDs, language.ID)

		for _, skill := range skills {
			if !seenSkills[skill.ID] {
				seenSkills[skill.ID] = true
				skillIDs = append(skillIDs, skill.ID)
			}
		}
	}
	return languageIDs, skillIDs, nil
}

func (s *teacherService) reindex(ctx context.Context, id uuid.UUID) {
	if s.indexer == nil {
		return
	}

	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.Printf("failed to load teacher %s for indexing: %v", id, err)
		return
	}
	if err := s.indexer.IndexProfile(ctx, profile); err != nil {
		log.Printf("failed to index teacher %s: %v", id, err)
	}
}

func parseSort(sort string) (string, bool, error) {
	if sort == "" {
		return "created_at", true, nil
	}

	field := sort
	direction := "asc"
	if idx := strings.IndexByte(sort, ','); idx >= 0 {
		field = sort[:idx]
		direction = strings.ToLower(sort[idx+1:])
	}

	column, ok := sortColumns[field]
	if !ok {
		return "", false, fmt.Errorf("unsupported sort field %q: %w", field, apperror.ErrValidation)
	}

	switch direction {
	case "asc":
		return column, false, nil
	case "desc":
		return column, true, nil
	default:
		return "", false, fmt.Errorf("unsupported sort direction %q: %w", direction, apperror.ErrValidation)
	}
}
