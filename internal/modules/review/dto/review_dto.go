package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hsik0225/dropthecode/internal/model"
	commonDto "github.com/hsik0225/dropthecode/pkg/dto"
)

type CreateReviewRequest struct {
	TeacherID string `json:"teacherId" binding:"required,uuid"`
	Title     string `json:"title" binding:"required,max=255"`
	Content   string `json:"content" binding:"required"`
	PrURL     string `json:"prUrl" binding:"required,url"`
}

type EditReviewRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
	PrURL   string `json:"prUrl" binding:"required,url"`
}

type FeedbackRequest struct {
	Star    int    `json:"star" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// FilterRequest narrows a member's review listing. Progress takes a
// comma-separated set of states; Name matches the counterpart's display name
// as a case-insensitive substring.
type FilterRequest struct {
	Progress string `form:"progress"`
	Name     string `form:"name"`
	commonDto.PageRequest
}

func (f FilterRequest) ProgressNames() []string {
	if f.Progress == "" {
		return nil
	}

	var names []string
	for _, part := range strings.Split(f.Progress, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

type ReviewMemberResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	ImageURL string    `json:"imageUrl"`
}

type ReviewResponse struct {
	ID          uuid.UUID            `json:"id"`
	Teacher     ReviewMemberResponse `json:"teacherProfile"`
	Student     ReviewMemberResponse `json:"studentProfile"`
	Title       string               `json:"title"`
	Content     string               `json:"content"`
	PrURL       string               `json:"prUrl"`
	Progress    model.Progress       `json:"progress"`
	ElapsedTime *int64               `json:"elapsedTime,omitempty"`
	Star        *int                 `json:"star,omitempty"`
	Comment     *string              `json:"comment,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
}

type ReviewPageResponse struct {
	Reviews   []ReviewResponse `json:"reviews"`
	PageCount int              `json:"pageCount"`
}

func NewReviewResponse(r *model.Review) ReviewResponse {
	return ReviewResponse{
		ID: r.ID,
		Teacher: ReviewMemberResponse{
			ID:       r.Teacher.ID,
			Name:     r.Teacher.Name,
			ImageURL: r.Teacher.ImageURL,
		},
		Student: ReviewMemberResponse{
			ID:       r.Student.ID,
			Name:     r.Student.Name,
			ImageURL: r.Student.ImageURL,
		},
		Title:       r.Title,
		Content:     r.Content,
		PrURL:       r.PrURL,
		Progress:    r.Progress,
		ElapsedTime: r.ElapsedTime,
		Star:        r.Star,
		Comment:     r.Comment,
		CreatedAt:   r.CreatedAt,
	}
}
