package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hsik0225/dropthecode/internal/model"
	"github.com/hsik0225/dropthecode/pkg/apperror"
)

// statsRetryLimit bounds the compare-and-swap loop in ApplyReviewStats.
const statsRetryLimit = 5

type SearchParams struct {
	LanguageID    uint
	SkillIDs      []uint
	SkillMatchAll bool
	MinCareer     int
	SortColumn    string
	SortDesc      bool
	Offset        int
	Limit         int
}

type TeacherRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.TeacherProfile, error)
	SaveWithSpecs(ctx context.Context, profile *model.TeacherProfile, languageIDs, skillIDs []uint, promote bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params SearchParams) ([]*model.TeacherProfile, int64, error)
	ApplyReviewStats(ctx context.Context, db *gorm.DB, id uuid.UUID, elapsedHours int64) error
}

type teacherRepository struct {
	db *gorm.DB
}

func NewTeacherRepository(db *gorm.DB) TeacherRepository {
	return &teacherRepository{db: db}
}

func (r *teacherRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TeacherProfile, error) {
	var profile model.TeacherProfile
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Languages.Skills").
		Preload("Skills").
		First(&profile, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SaveWithSpecs upserts the profile row and replaces its capability edges
// wholesale. Everything runs in one transaction, so a failed insert never
// leaves the profile with a partial edge set. With promote the owning member
// becomes a teacher in the same transaction. The conflict action only touches
// the editable columns: sum_review_count and average_review_time belong to
// ApplyReviewStats and must survive a re-registration over a scrubbed row.
func (r *teacherRepository) SaveWithSpecs(ctx context.Context, profile *model.TeacherProfile, languageIDs, skillIDs []uint, promote bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Omit("Member", "Languages", "Skills").
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"title", "content", "career", "updated_at"}),
			}).
			Create(profile).Error
		if err != nil {
			return err
		}

		if err := tx.Where("teacher_profile_id = ?", profile.ID).Delete(&model.TeacherLanguage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("teacher_profile_id = ?", profile.ID).Delete(&model.TeacherSkill{}).Error; err != nil {
			return err
		}

		languages := make([]model.TeacherLanguage, 0, len(languageIDs))
		for _, id := range languageIDs {
			languages = append(languages, model.TeacherLanguage{TeacherProfileID: profile.ID, LanguageID: id})
		}
		if len(languages) > 0 {
			if err := tx.Create(&languages).Error; err != nil {
				return err
			}
		}

		skills := make([]model.TeacherSkill, 0, len(skillIDs))
		for _, id := range skillIDs {
			skills = append(skills, model.TeacherSkill{TeacherProfileID: profile.ID, SkillID: id})
		}
		if len(skills) > 0 {
			if err := tx.Create(&skills).Error; err != nil {
				return err
			}
		}

		if promote {
			return tx.Model(&model.Member{}).Where("id = ?", profile.ID).
				Update("role", model.RoleTeacher).Error
		}
		return nil
	})
}

// Delete removes the profile and its edges and demotes the owning member back
// to a student.
func (r *teacherRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("teacher_profile_id = ?", id).Delete(&model.TeacherLanguage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("teacher_profile_id = ?", id).Delete(&model.TeacherSkill{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.TeacherProfile{}, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Model(&model.Member{}).Where("id = ?", id).
			Update("role", model.RoleStudent).Error
	})
}

func (r *teacherRepository) Search(ctx context.Context, params SearchParams) ([]*model.TeacherProfile, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&model.TeacherProfile{}).
			Where("id IN (?)", r.db.Table("teacher_languages").
				Select("teacher_profile_id").
				Where("language_id = ?", params.LanguageID))

		if len(params.SkillIDs) > 0 {
			sub := r.db.Table("teacher_skills").
				Select("teacher_profile_id").
				Where("skill_id IN ?", params.SkillIDs)
			if params.SkillMatchAll {
				sub = sub.Group("teacher_profile_id").
					Having("COUNT(DISTINCT skill_id) = ?", len(params.SkillIDs))
			}
			query = query.Where("id IN (?)", sub)
		}

		if params.MinCareer > 0 {
			query = query.Where("career >= ?", params.MinCareer)
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	direction := "ASC"
	if params.SortDesc {
		direction = "DESC"
	}

	var profiles []*model.TeacherProfile
	err := base().
		Order(fmt.Sprintf("%s %s", params.SortColumn, direction)).
		Order("id ASC").
		Offset(params.Offset).
		Limit(params.Limit).
		Preload("Member").
		Preload("Languages.Skills").
		Preload("Skills").
		Find(&profiles).Error
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// ApplyReviewStats folds one finished review into the profile's running
// average. The write is a compare-and-swap on sum_review_count, retried on
// contention so concurrent finishes serialize without row locks. The db
// argument lets the caller run the update inside a larger transaction.
func (r *teacherRepository) ApplyReviewStats(ctx context.Context, db *gorm.DB, id uuid.UUID, elapsedHours int64) error {
	if db == nil {
		db = r.db
	}

	for attempt := 0; attempt < statsRetryLimit; attempt++ {
		var profile model.TeacherProfile
		if err := db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
			return err
		}

		previousCount := profile.SumReviewCount
		profile.RecordFinishedReview(elapsedHours)

		res := db.WithContext(ctx).Model(&model.TeacherProfile{}).
			Where("id = ? AND sum_review_count = ?", id, previousCount).
			Updates(map[string]interface{}{
				"sum_review_count":    profile.SumReviewCount,
				"average_review_time": profile.AverageReviewTime,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
	}
	return fmt.Errorf("review stats update for teacher %s kept losing races: %w", id, apperror.ErrConflict)
}
