package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hsik0225/dropthecode/internal/model"
	"github.com/hsik0225/dropthecode/pkg/apperror"
)

type ListFilter struct {
	Progress []model.Progress
	Name     string
	SortDesc bool
	Offset   int
	Limit    int
}

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, from, to model.Progress) error
	UpdatePendingContent(ctx context.Context, review *model.Review) error
	DeletePending(ctx context.Context, id uuid.UUID) error
	Finish(ctx context.Context, review *model.Review, applyStats func(tx *gorm.DB) error) error
	FindAllByStudent(ctx context.Context, studentID uuid.UUID, filter ListFilter) ([]*model.Review, int64, error)
	FindAllByTeacher(ctx context.Context, teacherID uuid.UUID, filter ListFilter) ([]*model.Review, int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Omit("Teacher", "Student").Create(review).Error
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Student").
		First(&review, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// UpdateProgress commits a transition with a guard on the current state, so
// of two racing transitions exactly one wins; the loser sees zero affected
// rows and an invalid-state error.
func (r *reviewRepository) UpdateProgress(ctx context.Context, id uuid.UUID, from, to model.Progress) error {
	res := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("id = ? AND progress = ?", id, from).
		Update("progress", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review %s is no longer %s: %w", id, from, apperror.ErrInvalidState)
	}
	return nil
}

func (r *reviewRepository) UpdatePendingContent(ctx context.Context, review *model.Review) error {
	res := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("id = ? AND progress = ?", review.ID, model.ProgressPending).
		Updates(map[string]interface{}{
			"title":   review.Title,
			"content": review.Content,
			"pr_url":  review.PrURL,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review %s is no longer %s: %w", review.ID, model.ProgressPending, apperror.ErrInvalidState)
	}
	return nil
}

func (r *reviewRepository) DeletePending(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND progress = ?", id, model.ProgressPending).
		Delete(&model.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review %s is no longer %s: %w", id, model.ProgressPending, apperror.ErrInvalidState)
	}
	return nil
}

// Finish persists the student's feedback and the FINISHED transition in one
// transaction together with the teacher aggregate update supplied by the
// caller. The guarded progress update gates the commit: if another finish got
// there first the whole transaction rolls back and the aggregate is applied
// exactly once.
func (r *reviewRepository) Finish(ctx context.Context, review *model.Review, applyStats func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyStats(tx); err != nil {
			return err
		}

		res := tx.Model(&model.Review{}).
			Where("id = ? AND progress = ?", review.ID, model.ProgressTeacherCompleted).
			Updates(map[string]interface{}{
				"progress":     model.ProgressFinished,
				"star":         review.Star,
				"comment":      review.Comment,
				"elapsed_time": review.ElapsedTime,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("review %s is no longer %s: %w", review.ID, model.ProgressTeacherCompleted, apperror.ErrInvalidState)
		}
		return nil
	})
}

func (r *reviewRepository) FindAllByStudent(ctx context.Context, studentID uuid.UUID, filter ListFilter) ([]*model.Review, int64, error) {
	return r.findAll(ctx, "student_id", "teacher_id", studentID, filter)
}

func (r *reviewRepository) FindAllByTeacher(ctx context.Context, teacherID uuid.UUID, filter ListFilter) ([]*model.Review, int64, error) {
	return r.findAll(ctx, "teacher_id", "student_id", teacherID, filter)
}

// findAll lists one member's reviews. The name filter matches the counterpart
// member's display name, so the join column flips between the student and
// teacher views.
func (r *reviewRepository) findAll(ctx context.Context, ownerColumn, counterpartColumn string, ownerID uuid.UUID, filter ListFilter) ([]*model.Review, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&model.Review{}).
			Where(fmt.Sprintf("reviews.%s = ?", ownerColumn), ownerID)

		if len(filter.Progress) > 0 {
			query = query.Where("reviews.progress IN ?", filter.Progress)
		}

		if filter.Name != "" {
			query = query.
				Joins(fmt.Sprintf("JOIN members counterpart ON counterpart.id = reviews.%s", counterpartColumn)).
				Where("LOWER(counterpart.name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "reviews.created_at ASC"
	if filter.SortDesc {
		order = "reviews.created_at DESC"
	}

	var reviews []*model.Review
	err := base().
		Order(order).
		Order("reviews.id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Preload("Teacher").
		Preload("Student").
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}
