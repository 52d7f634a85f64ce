package dto

import (
	memberDto "github.com/hsik0225/dropthecode/internal/modules/member/dto"
)

type AuthResponse struct {
	AccessToken string                   `json:"access_token"`
	TokenType   string                   `json:"token_type"`
	ExpiresIn   int64                    `json:"expires_in"`
	Member      memberDto.MemberResponse `json:"member"`
}
