package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/hsik0225/dropthecode/internal/model"
)

type MemberResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	ImageURL  string     `json:"imageUrl"`
	GithubURL string     `json:"githubUrl,omitempty"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
}

func NewMemberResponse(m *model.Member) MemberResponse {
	return MemberResponse{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		ImageURL:  m.ImageURL,
		GithubURL: m.GithubURL,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
	}
}
