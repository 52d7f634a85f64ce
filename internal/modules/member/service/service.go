package member

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hsik0225/dropthecode/internal/model"
	"github.com/hsik0225/dropthecode/internal/modules/member/dto"
	"github.com/hsik0225/dropthecode/internal/modules/member/repository"
	"github.com/hsik0225/dropthecode/pkg/apperror"
)

type MemberService interface {
	GetMember(ctx context.Context, id uuid.UUID) (*dto.MemberResponse, error)
	DeleteMember(ctx context.Context, id uuid.UUID) error
}

type memberService struct {
	repo repository.MemberRepository
}

func NewMemberService(repo repository.MemberRepository) MemberService {
	return &memberService{repo: repo}
}

func (s *memberService) GetMember(ctx context.Context, id uuid.UUID) (*dto.MemberResponse, error) {
	member, err := s.findMember(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := dto.NewMemberResponse(member)
	return &resp, nil
}

// DeleteMember soft-deletes: identity fields become sentinels and any teacher
// profile is scrubbed, so reviews referencing the member stay intact.
func (s *memberService) DeleteMember(ctx context.Context, id uuid.UUID) error {
	member, err := s.findMember(ctx, id)
	if err != nil {
		return err
	}
	if member.HasRole(model.RoleDeleted) {
		return fmt.Errorf("member already deleted: %w", apperror.ErrInvalidState)
	}

	member.Delete()
	if member.TeacherProfile != nil {
		member.TeacherProfile.Scrub()
	}

	return s.repo.ScrubMember(ctx, member)
}

func (s *memberService) findMember(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	member, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("member %s: %w", id, apperror.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}
