package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hsik0225/dropthecode/internal/model"
)

type MemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Member, error)
	FindByOauthID(ctx context.Context, oauthID string) (*model.Member, error)
	Update(ctx context.Context, member *model.Member) error
	ScrubMember(ctx context.Context, member *model.Member) error
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *memberRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	var member model.Member
	if err := r.db.WithContext(ctx).Preload("TeacherProfile").First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) FindByOauthID(ctx context.Context, oauthID string) (*model.Member, error) {
	var member model.Member
	if err := r.db.WithContext(ctx).Where("oauth_id = ?", oauthID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) Update(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Omit("TeacherProfile").Save(member).Error
}

// ScrubMember persists a soft-deleted member. The identity fields are assumed
// to be sentinel-overwritten already; when a teacher profile is attached its
// text is scrubbed too and its capability edges removed, all in one
// transaction so a failure leaves the member untouched.
func (r *memberRepository) ScrubMember(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("TeacherProfile").Save(member).Error; err != nil {
			return err
		}

		if member.TeacherProfile == nil {
			return nil
		}

		profile := member.TeacherProfile
		if err := tx.Omit("Member", "Languages", "Skills").Save(profile).Error; err != nil {
			return err
		}
		if err := tx.Where("teacher_profile_id = ?", profile.ID).Delete(&model.TeacherLanguage{}).Error; err != nil {
			return err
		}
		return tx.Where("teacher_profile_id = ?", profile.ID).Delete(&model.TeacherSkill{}).Error
	})
}
