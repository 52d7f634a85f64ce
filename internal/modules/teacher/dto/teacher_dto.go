package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hsik0225/dropthecode/internal/model"
	commonDto "github.com/hsik0225/dropthecode/pkg/dto"
)

type TechSpecRequest struct {
	Language string   `json:"language" binding:"required"`
	Skills   []string `json:"skills"`
}

type RegistrationRequest struct {
	Title     string            `json:"title" binding:"required,max=255"`
	Content   string            `json:"content" binding:"required"`
	Career    int               `json:"career" binding:"min=0"`
	TechSpecs []TechSpecRequest `json:"techSpecs" binding:"required,min=1,dive"`
}

// FilterRequest is the capability-search query. Skills arrive comma-separated
// in a single parameter.
type FilterRequest struct {
	Language string `form:"language"`
	Skills   string `form:"skills"`
	Career   int    `form:"career"`
	commonDto.PageRequest
}

func (f FilterRequest) SkillNames() []string {
	if f.Skills == "" {
		return nil
	}

	var names []string
	for _, part := range strings.Split(f.Skills, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

type TextSearchRequest struct {
	Query string `form:"q" binding:"required"`
}

type TechSpecResponse struct {
	Language string   `json:"language"`
	Skills   []string `json:"skills"`
}

type TeacherProfileResponse struct {
	ID                uuid.UUID          `json:"id"`
	Name              string             `json:"name"`
	ImageURL          string             `json:"imageUrl"`
	GithubURL         string             `json:"githubUrl,omitempty"`
	Title             string             `json:"title"`
	Content           string             `json:"content"`
	Career            int                `json:"career"`
	SumReviewCount    int                `json:"sumReviewCount"`
	AverageReviewTime float64            `json:"averageReviewTime"`
	TechSpecs         []TechSpecResponse `json:"techSpecs"`
	CreatedAt         time.Time          `json:"createdAt"`
}

type TeacherPageResponse struct {
	TeacherProfiles []TeacherProfileResponse `json:"teacherProfiles"`
	PageCount       int                      `json:"pageCount"`
}

// NewTeacherProfileResponse groups the profile's flat skill set back under
// the languages that own them, using the preloaded language-skill graph.
func NewTeacherProfileResponse(p *model.TeacherProfile) TeacherProfileResponse {
	techSpecs := make([]TechSpecResponse, 0, len(p.Languages))
	for _, lang := range p.Languages {
		owned := make(map[uint]bool, len(lang.Skills))
		for _, skill := range lang.Skills {
			owned[skill.ID] = true
		}

		skills := make([]string, 0)
		for _, skill := range p.Skills {
			if owned[skill.ID] {
				skills = append(skills, skill.Name)
			}
		}
		techSpecs = append(techSpecs, TechSpecResponse{Language: lang.Name, Skills: skills})
	}

	return TeacherProfileResponse{
		ID:                p.ID,
		Name:              p.Member.Name,
		ImageURL:          p.Member.ImageURL,
		GithubURL:         p.Member.GithubURL,
		Title:             p.Title,
		Content:           p.Content,
		Career:            p.Career,
		SumReviewCount:    p.SumReviewCount,
		AverageReviewTime: p.AverageReviewTime,
		TechSpecs:         techSpecs,
		CreatedAt:         p.CreatedAt,
	}
}
