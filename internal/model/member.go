package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleDeleted Role = "DELETED"
)

const (
	deletedUserEmail    = "unknown@dropthecode.co.kr"
	deletedUserName     = "deleted user"
	deletedUserImageURL = "https://static.thenounproject.com/png/994628-200.png"
)

type Member struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OauthID        string          `gorm:"size:100;index" json:"-"`
	Email          string          `gorm:"size:100;not null" json:"email"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	ImageURL       string          `gorm:"type:text;not null" json:"imageUrl"`
	GithubURL      string          `gorm:"type:text" json:"githubUrl"`
	Role           Role            `gorm:"size:20;not null" json:"role"`
	TeacherProfile *TeacherProfile `gorm:"foreignKey:ID" json:"teacherProfile,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"createdAt"`
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *Member) HasRole(role Role) bool {
	return m.Role == role
}

// Relogin refreshes identity fields from the OAuth provider. A soft-deleted
// member comes back as a student.
func (m *Member) Relogin(email, name, imageURL string) {
	if m.Role == RoleDeleted {
		m.Role = RoleStudent
	}
	m.Email = email
	m.Name = name
	m.ImageURL = imageURL
}

// Delete overwrites identity fields with sentinel values and marks the member
// DELETED. The row is kept so review history stays referentially intact.
func (m *Member) Delete() {
	m.Email = deletedUserEmail
	m.Name = deletedUserName
	m.ImageURL = deletedUserImageURL
	m.GithubURL = ""
	m.Role = RoleDeleted
}
