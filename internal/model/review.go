package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hsik0225/dropthecode/pkg/apperror"
)

type Progress string

const (
	ProgressPending          Progress = "PENDING"
	ProgressDenied           Progress = "DENIED"
	ProgressOnGoing          Progress = "ON_GOING"
	ProgressTeacherCompleted Progress = "TEACHER_COMPLETED"
	ProgressFinished         Progress = "FINISHED"
)

func ParseProgress(s string) (Progress, error) {
	switch p := Progress(s); p {
	case ProgressPending, ProgressDenied, ProgressOnGoing, ProgressTeacherCompleted, ProgressFinished:
		return p, nil
	default:
		return "", fmt.Errorf("unknown progress %q: %w", s, apperror.ErrValidation)
	}
}

// Review is a single mentorship engagement between a student and a teacher.
// Its progress field is only ever mutated through the state variants below.
type Review struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	StudentID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Teacher     Member    `gorm:"foreignKey:TeacherID" json:"teacherProfile"`
	Student     Member    `gorm:"foreignKey:StudentID" json:"studentProfile"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	PrURL       string    `gorm:"type:text;not null" json:"prUrl"`
	Progress    Progress  `gorm:"size:20;not null;index" json:"progress"`
	ElapsedTime *int64    `json:"elapsedTime,omitempty"` // hours, set on finish
	Star        *int      `json:"star,omitempty"`
	Comment     *string   `json:"comment,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *Review) RequireTeacher(actorID uuid.UUID) error {
	if r.TeacherID != actorID {
		return fmt.Errorf("only the requested teacher may perform this action: %w", apperror.ErrForbidden)
	}
	return nil
}

func (r *Review) RequireStudent(actorID uuid.UUID) error {
	if r.StudentID != actorID {
		return fmt.Errorf("only the requesting student may perform this action: %w", apperror.ErrForbidden)
	}
	return nil
}

func (r *Review) invalidState(expected Progress) error {
	return fmt.Errorf("review is %s, expected %s: %w", r.Progress, expected, apperror.ErrInvalidState)
}

// The lifecycle is modeled as one variant per state. Each variant asserts its
// entry invariant on construction, so a stale reference whose stored progress
// has moved on cannot perform an outdated transition, and each exposes only
// the operations legal from its state.

type PendingReview struct {
	review *Review
}

func (r *Review) AsPending() (*PendingReview, error) {
	if r.Progress != ProgressPending {
		return nil, r.invalidState(ProgressPending)
	}
	return &PendingReview{review: r}, nil
}

func (p *PendingReview) Accept(actorID uuid.UUID) error {
	if err := p.review.RequireTeacher(actorID); err != nil {
		return err
	}
	p.review.Progress = ProgressOnGoing
	return nil
}

func (p *PendingReview) Deny(actorID uuid.UUID) error {
	if err := p.review.RequireTeacher(actorID); err != nil {
		return err
	}
	p.review.Progress = ProgressDenied
	return nil
}

// Cancel authorizes the logical removal of the request; the caller deletes
// the row afterwards.
func (p *PendingReview) Cancel(actorID uuid.UUID) error {
	return p.review.RequireStudent(actorID)
}

func (p *PendingReview) Edit(actorID uuid.UUID, title, content, prURL string) error {
	if err := p.review.RequireStudent(actorID); err != nil {
		return err
	}
	p.review.Title = title
	p.review.Content = content
	p.review.PrURL = prURL
	return nil
}

type OnGoingReview struct {
	review *Review
}

func (r *Review) AsOnGoing() (*OnGoingReview, error) {
	if r.Progress != ProgressOnGoing {
		return nil, r.invalidState(ProgressOnGoing)
	}
	return &OnGoingReview{review: r}, nil
}

func (o *OnGoingReview) Complete(actorID uuid.UUID) error {
	if err := o.review.RequireTeacher(actorID); err != nil {
		return err
	}
	o.review.Progress = ProgressTeacherCompleted
	return nil
}

type TeacherCompletedReview struct {
	review *Review
}

func (r *Review) AsTeacherCompleted() (*TeacherCompletedReview, error) {
	if r.Progress != ProgressTeacherCompleted {
		return nil, r.invalidState(ProgressTeacherCompleted)
	}
	return &TeacherCompletedReview{review: r}, nil
}

func (t *TeacherCompletedReview) Finish(actorID uuid.UUID, star int, comment string, elapsedHours int64) error {
	if err := t.review.RequireStudent(actorID); err != nil {
		return err
	}
	t.review.Star = &star
	t.review.Comment = &comment
	t.review.ElapsedTime = &elapsedHours
	t.review.Progress = ProgressFinished
	return nil
}
