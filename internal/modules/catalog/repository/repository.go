package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hsik0225/dropthecode/internal/model"
)

type CatalogRepository interface {
	FindAllLanguages(ctx context.Context) ([]*model.Language, error)
	FindLanguageByName(ctx context.Context, name string) (*model.Language, error)
	FindSkillsByNames(ctx context.Context, names []string) ([]*model.Skill, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) FindAllLanguages(ctx context.Context) ([]*model.Language, error) {
	var languages []*model.Language
	if err := r.db.WithContext(ctx).Preload("Skills").Order("id ASC").Find(&languages).Error; err != nil {
		return nil, err
	}
	return languages, nil
}

func (r *catalogRepository) FindLanguageByName(ctx context.Context, name string) (*model.Language, error) {
	var language model.Language
	if err := r.db.WithContext(ctx).Preload("Skills").Where("name = ?", name).First(&language).Error; err != nil {
		return nil, err
	}
	return &language, nil
}

func (r *catalogRepository) FindSkillsByNames(ctx context.Context, names []string) ([]*model.Skill, error) {
	var skills []*model.Skill
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}
