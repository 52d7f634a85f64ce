package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hsik0225/dropthecode/internal/model"
	"github.com/hsik0225/dropthecode/internal/modules/catalog/dto"
	"github.com/hsik0225/dropthecode/internal/modules/catalog/repository"
	"github.com/hsik0225/dropthecode/pkg/apperror"
)

// CatalogService answers questions about the fixed language/skill graph seeded
// at bootstrap. The graph never changes at runtime, so lookups go straight to
// the database without caching.
type CatalogService interface {
	GetAllLanguages(ctx context.Context) (*dto.LanguagesResponse, error)
	ResolveLanguage(ctx context.Context, name string) (*model.Language, error)
	ResolveSkills(ctx context.Context, names []string) ([]*model.Skill, error)
	ResolveTechSpec(ctx context.Context, language string, skills []string) (*model.Language, []*model.Skill, error)
}

type catalogService struct {
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) GetAllLanguages(ctx context.Context) (*dto.LanguagesResponse, error) {
	languages, err := s.repo.FindAllLanguages(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.LanguagesResponse{Languages: make([]dto.LanguageResponse, 0, len(languages))}
	for _, lang := range languages {
		skills := make([]dto.SkillResponse, 0, len(lang.Skills))
		for _, skill := range lang.Skills {
			skills = append(skills, dto.SkillResponse{ID: skill.ID, Name: skill.Name})
		}
		resp.Languages = append(resp.Languages, dto.LanguageResponse{ID: lang.ID, Name: lang.Name, Skills: skills})
	}
	return resp, nil
}

func (s *catalogService) ResolveLanguage(ctx context.Context, name string) (*model.Language, error) {
	language, err := s.repo.FindLanguageByName(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("unknown language %q: %w", name, apperror.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return language, nil
}

func (s *catalogService) ResolveSkills(ctx context.Context, names []string) ([]*model.Skill, error) {
	if len(names) == 0 {
		return nil, nil
	}

	skills, err := s.repo.FindSkillsByNames(ctx, names)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*model.Skill, len(skills))
	for _, skill := range skills {
		byName[skill.Name] = skill
	}

	resolved := make([]*model.Skill, 0, len(names))
	for _, name := range names {
		skill, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown skill %q: %w", name, apperror.ErrNotFound)
		}
		resolved = append(resolved, skill)
	}
	return resolved, nil
}

// ResolveTechSpec resolves a language and its accompanying skills, rejecting
// skills the catalog does not list under that language.
func (s *catalogService) ResolveTechSpec(ctx context.Context, language string, skills []string) (*model.Language, []*model.Skill, error) {
	lang, err := s.ResolveLanguage(ctx, language)
	if err != nil {
		return nil, nil, err
	}

	resolved, err := s.ResolveSkills(ctx, skills)
	if err != nil {
		return nil, nil, err
	}

	valid := make(map[uint]bool, len(lang.Skills))
	for _, skill := range lang.Skills {
		valid[skill.ID] = true
	}
	for _, skill := range resolved {
		if !valid[skill.ID] {
			return nil, nil, fmt.Errorf("skill %q is not available for language %q: %w", skill.Name, lang.Name, apperror.ErrValidation)
		}
	}
	return lang, resolved, nil
}
