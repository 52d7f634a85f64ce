package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"gorm.io/gorm"

	"github.com/hsik0225/dropthecode/internal/config"
	"github.com/hsik0225/dropthecode/internal/model"
	"github.com/hsik0225/dropthecode/internal/modules/auth/dto"
	memberDto "github.com/hsik0225/dropthecode/internal/modules/member/dto"
	"github.com/hsik0225/dropthecode/internal/modules/member/repository"
	"github.com/hsik0225/dropthecode/pkg/apperror"
)

const githubUserURL = "https://api.github.com/user"

type AuthService interface {
	GithubLogin() string
	GithubCallback(ctx context.Context, code string) (*dto.AuthResponse, error)
}

type authService struct {
	members      repository.MemberRepository
	secret       string
	tokenTTL     time.Duration
	githubConfig *oauth2.Config
}

func NewAuthService(members repository.MemberRepository, cfg *config.Config) AuthService {
	githubConfig := &oauth2.Config{
		ClientID:     cfg.GithubClientID,
		ClientSecret: cfg.GithubClientSecret,
		RedirectURL:  cfg.GithubRedirectURL,
		Scopes:       []string{"read:user", "user:email"},
		Endpoint:     github.Endpoint,
	}

	return &authService{
		members:      members,
		secret:       cfg.JWTSecret,
		tokenTTL:     cfg.JWTTTL,
		githubConfig: githubConfig,
	}
}

func (s *authService) GithubLogin() string {
	return s.githubConfig.AuthCodeURL("state-token")
}

// GithubCallback exchanges the authorization code, fetches the GitHub user
// and upserts the member. A DELETED member logging back in re-registers as a
// student with fresh identity fields.
func (s *authService) GithubCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	token, err := s.githubConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", apperror.ErrUnauthorized)
	}

	client := s.githubConfig.Client(ctx, token)
	resp, err := client.Get(githubUserURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch github user: %w", err)
	}
	defer resp.Body.Close()

	var githubUser struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
		HTMLURL   string `json:"html_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&githubUser); err != nil {
		return nil, fmt.Errorf("failed to decode github user: %w", err)
	}

	name := githubUser.Name
	if name == "" {
		name = githubUser.Login
	}
	email := githubUser.Email
	if email == "" {
		email = githubUser.Login + "@users.noreply.github.com"
	}

	oauthID := strconv.FormatInt(githubUser.ID, 10)
	member, err := s.members.FindByOauthID(ctx, oauthID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		member = &model.Member{
			OauthID:   oauthID,
			Email:     email,
			Name:      name,
			ImageURL:  githubUser.AvatarURL,
			GithubURL: githubUser.HTMLURL,
			Role:      model.RoleStudent,
		}
		if err := s.members.Create(ctx, member); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		member.Relogin(email, name, githubUser.AvatarURL)
		member.GithubURL = githubUser.HTMLURL
		if err := s.members.Update(ctx, member); err != nil {
			return nil, err
		}
	}

	return s.buildAuthResponse(member)
}

func (s *authService) buildAuthResponse(member *model.Member) (*dto.AuthResponse, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   member.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt.Unix(),
		Member:      memberDto.NewMemberResponse(member),
	}, nil
}
