package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	scrubbedProfileTitle   = "This reviewer has left."
	scrubbedProfileContent = "no content"
)

// TeacherProfile shares its primary key with the owning member, which
// enforces at most one profile per member.
type TeacherProfile struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title             string     `gorm:"size:255;not null" json:"title"`
	Content           string     `gorm:"type:text;not null" json:"content"`
	Career            int        `gorm:"not null" json:"career"`
	SumReviewCount    int        `gorm:"not null;default:0" json:"sumReviewCount"`
	AverageReviewTime float64    `gorm:"not null;default:0" json:"averageReviewTime"`
	Member            Member     `gorm:"foreignKey:ID;references:ID" json:"-"`
	Languages         []Language `gorm:"many2many:teacher_languages" json:"languages,omitempty"`
	Skills            []Skill    `gorm:"many2many:teacher_skills" json:"skills,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"-"`
}

type TeacherLanguage struct {
	TeacherProfileID uuid.UUID `gorm:"type:uuid;primaryKey"`
	LanguageID       uint      `gorm:"primaryKey"`
}

type TeacherSkill struct {
	TeacherProfileID uuid.UUID `gorm:"type:uuid;primaryKey"`
	SkillID          uint      `gorm:"primaryKey"`
}

func (t *TeacherProfile) Update(title, content string, career int) {
	t.Title = title
	t.Content = content
	t.Career = career
}

// RecordFinishedReview folds one more completed review into the running
// average. The stored average is in days, the sample in hours: the current
// average is converted back into an hour total, the sample added, and the new
// total divided over n+1 samples, rounded to one decimal.
func (t *TeacherProfile) RecordFinishedReview(elapsedHours int64) {
	next := (float64(elapsedHours) + t.AverageReviewTime*float64(t.SumReviewCount)*24) / 24 / float64(t.SumReviewCount+1)
	t.SumReviewCount++
	t.AverageReviewTime = math.Round(next*10) / 10
}

// Scrub blanks the profile text when the owning member is deleted. The row
// and its aggregate stay so finished reviews keep a valid reference.
func (t *TeacherProfile) Scrub() {
	t.Title = scrubbedProfileTitle
	t.Content = scrubbedProfileContent
	t.Career = 0
}
