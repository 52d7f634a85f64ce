package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/hsik0225/dropthecode/internal/model"
	memberRepo "github.com/hsik0225/dropthecode/internal/modules/member/repository"
	"github.com/hsik0225/dropthecode/internal/modules/review/dto"
	"github.com/hsik0225/dropthecode/internal/modules/review/repository"
	teacher "github.com/hsik0225/dropthecode/internal/modules/teacher/service"
	"github.com/hsik0225/dropthecode/pkg/apperror"
	commonDto "github.com/hsik0225/dropthecode/pkg/dto"
)

// Notifier delivers review lifecycle events to the counterpart member.
// Delivery is best-effort and never fails the transition.
type Notifier interface {
	NotifyReviewEvent(ctx context.Context, recipientID, reviewID uuid.UUID, message string)
}

type ReviewService interface {
	Create(ctx context.Context, studentID uuid.UUID, req dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	GetReview(ctx context.Context, id uuid.UUID) (*dto.ReviewResponse, error)
	Edit(ctx context.Context, actorID, reviewID uuid.UUID, req dto.EditReviewRequest) error
	Cancel(ctx context.Context, actorID, reviewID uuid.UUID) error
	Accept(ctx context.Context, actorID, reviewID uuid.UUID) error
	Deny(ctx context.Context, actorID, reviewID uuid.UUID) error
	Complete(ctx context.Context, actorID, reviewID uuid.UUID) error
	Finish(ctx context.Context, actorID, reviewID uuid.UUID, req dto.FeedbackRequest) error
	ListByStudent(ctx context.Context, studentID uuid.UUID, filter dto.FilterRequest) (*dto.ReviewPageResponse, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID, filter dto.FilterRequest) (*dto.ReviewPageResponse, error)
}

type reviewService struct {
	repo      repository.ReviewRepository
	members   memberRepo.MemberRepository
	teachers  teacher.TeacherService
	notifier  Notifier
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func NewReviewService(repo repository.ReviewRepository, members memberRepo.MemberRepository, teachers teacher.TeacherService, notifier Notifier) ReviewService {
	return &reviewService{
		repo:      repo,
		members:   members,
		teachers:  teachers,
		notifier:  notifier,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

func (s *reviewService) Create(ctx context.Context, studentID uuid.UUID, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	teacherID, err := uuid.Parse(req.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("invalid teacher id: %w", apperror.ErrValidation)
	}
	if teacherID == studentID {
		return nil, fmt.Errorf("cannot request a review from yourself: %w", apperror.ErrValidation)
	}

	teacherMember, err := s.members.FindByID(ctx, teacherID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("member %s: %w", teacherID, apperror.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !teacherMember.HasRole(model.RoleTeacher) {
		return nil, fmt.Errorf("member %s is not a teacher: %w", teacherID, apperror.ErrValidation)
	}

	review := &model.Review{
		TeacherID: teacherID,
		StudentID: studentID,
		Title:     req.Title,
		Content:   s.sanitizer.Sanitize(req.Content),
		PrURL:     req.PrURL,
		Progress:  model.ProgressPending,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	s.notify(ctx, teacherID, review.ID, "You have a new review request.")
	return s.GetReview(ctx, review.ID)
}

func (s *reviewService) GetReview(ctx context.Context, id uuid.UUID) (*dto.ReviewResponse, error) {
	review, err := s.findReview(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := dto.NewReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) Edit(ctx context.Context, actorID, reviewID uuid.UUID, req dto.EditReviewRequest) error {
	review, err := s.findReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := review.RequireStudent(actorID); err != nil {
		return err
	}

	pending, err := review.AsPending()
	if err != nil {
		return err
	}
	if err := pending.Edit(actorID, req.Title, s.sanitizer.Sanitize(req.Content), req.PrURL); err != nil {
		return err
	}

	return s.repo.UpdatePendingContent(ctx, review)
}

func (s *reviewService) Cancel(ctx context.Context, actorID, reviewID uuid.UUID) error {
	review, err := s.findReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := review.RequireStudent(actorID); err != nil {
		return err
	}

	pending, err := review.AsPending()
	if err != nil {
		return err
	}
	if err := pending.Cancel(actorID); err != nil {
		return err
	}

	if err := s.repo.DeletePending(ctx, reviewID); err != nil {
		return err
	}

	s.notify(ctx, review.TeacherID, review.ID, "A pending review request was cancelled.")
	return nil
}

func (s *reviewService) Accept(ctx context.Context, actorID, reviewID uuid.UUID) error {
	review, err := s.findReview(ctx, reviewID)
	if err != nil {
		return err
	}
	// Actor check comes before the state check: an outsider gets a
	// permission error even when the transition itself would be illegal.
	if err := review.RequireTeacher(actorID); err != nil {
		return err
	}

	pending, err := review.AsPending()
	if err != nil {
		return err
	}
	if err := pending.Accept(actorID); err != nil {
		return err
	}

	if err := s.repo.UpdateProgress(ctx, reviewID, model.ProgressPending, model.ProgressOnGoing); err != nil {
		return err
	}

	s.notify(ctx, review.StudentID, review.ID, "Your review request was accepted.")
	return nil
}

func (s *reviewService) Deny(ctx context.Context, actorID, reviewID uuid.UUID) error {
	review, err := s.findReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := review.RequireTeacher(actorID); err != nil {
		return err
	}

	pending, err := review.AsPending()
	if err != nil {
		return err
	}
	if err := pending.Deny(actorID); err != nil {
		return err
	}

	if err := s.repo.UpdateProgress(ctx, reviewID, model.ProgressPending, model.ProgressDenied); err != nil {
		return err
	}

	s.notify(ctx, review.StudentID, review.ID, "Your review request was denied.")
	return nil
}

func (s *reviewService) Complete(ctx context.Context, actorID, reviewID uuid.UUID) error {
	review, err := s.findReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := review.RequireTeacher(actorID); err != nil {
		return err
	}

	onGoing, err := review.AsOnGoing()
	if err != nil {
		return err
	}
	if err := onGoing.Complete(actorID); err != nil {
		return err
	}

	if err := s.repo.UpdateProgress(ctx, reviewID, model.ProgressOnGoing, model.ProgressTeacherCompleted); err != nil {
		return err
	}

	s.notify(ctx, review.StudentID, review.ID, "The teacher finished working on your review.")
	return nil
}

// Finish closes the review with the student's feedback and folds the elapsed
// time into the teacher's running average. Both writes share one transaction:
// the guarded progress update gates the commit, so the aggregate applies
// exactly once no matter how many finishes race.
func (s *reviewService) Finish(ctx context.Context, actorID, reviewID uuid.UUID, req dto.FeedbackRequest) error {
	review, err := s.findReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := review.RequireStudent(actorID); err != nil {
		return err
	}

	completed, err := review.AsTeacherCompleted()
	if err != nil {
		return err
	}

	elapsedHours := int64(s.now().Sub(review.CreatedAt).Hours())
	if err := completed.Finish(actorID, req.Star, s.sanitizer.Sanitize(req.Comment), elapsedHours); err != nil {
		return err
	}

	err = s.repo.Finish(ctx, review, func(tx *gorm.DB) error {
		return s.teachers.RecordCompletedReview(ctx, tx, review.TeacherID, elapsedHours)
	})
	if err != nil {
		return err
	}

	s.notify(ctx, review.TeacherID, review.ID, "The student finished the review and left feedback.")
	return nil
}

func (s *reviewService) ListByStudent(ctx context.Context, studentID uuid.UUID, filter dto.FilterRequest) (*dto.ReviewPageResponse, error) {
	listFilter, err := buildListFilter(filter)
	if err != nil {
		return nil, err
	}

	reviews, total, err := s.repo.FindAllByStudent(ctx, studentID, listFilter)
	if err != nil {
		return nil, err
	}
	return newPageResponse(reviews, total, listFilter.Limit), nil
}

func (s *reviewService) ListByTeacher(ctx context.Context, teacherID uuid.UUID, filter dto.FilterRequest) (*dto.ReviewPageResponse, error) {
	listFilter, err := buildListFilter(filter)
	if err != nil {
		return nil, err
	}

	reviews, total, err := s.repo.FindAllByTeacher(ctx, teacherID, listFilter)
	if err != nil {
		return nil, err
	}
	return newPageResponse(reviews, total, listFilter.Limit), nil
}

func (s *reviewService) findReview(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	review, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("review %s: %w", id, apperror.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) notify(ctx context.Context, recipientID, reviewID uuid.UUID, message string) {
	if s.notifier != nil {
		s.notifier.NotifyReviewEvent(ctx, recipientID, reviewID, message)
	}
}

func buildListFilter(filter dto.FilterRequest) (repository.ListFilter, error) {
	progresses := make([]model.Progress, 0)
	for _, name := range filter.ProgressNames() {
		progress, err := model.ParseProgress(strings.ToUpper(name))
		if err != nil {
			return repository.ListFilter{}, err
		}
		progresses = append(progresses, progress)
	}

	sortDesc := true
	switch filter.Sort {
	case "", "createdAt,desc":
	case "createdAt,asc":
		sortDesc = false
	default:
		return repository.ListFilter{}, fmt.Errorf("unsupported sort %q: %w", filter.Sort, apperror.ErrValidation)
	}

	filter.Normalize()
	return repository.ListFilter{
		Progress: progresses,
		Name:     filter.Name,
		SortDesc: sortDesc,
		Offset:   filter.Offset(),
		Limit:    filter.Size,
	}, nil
}

func newPageResponse(reviews []*model.Review, total int64, size int) *dto.ReviewPageResponse {
	resp := &dto.ReviewPageResponse{
		Reviews:   make([]dto.ReviewResponse, 0, len(reviews)),
		PageCount: commonDto.PageCount(total, size),
	}
	for _, review := range reviews {
		resp.Reviews = append(resp.Reviews, dto.NewReviewResponse(review))
	}
	return resp
}
