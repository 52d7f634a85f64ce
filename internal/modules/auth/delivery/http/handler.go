package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	auth "github.com/hsik0225/dropthecode/internal/modules/auth/service"
	"github.com/hsik0225/dropthecode/pkg/response"
)

type AuthHandler struct {
	service auth.AuthService
}

func NewAuthHandler(service auth.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) GithubLogin(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, h.service.GithubLogin())
}

func (h *AuthHandler) GithubCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code query parameter is required"})
		return
	}

	resp, err := h.service.GithubCallback(c.Request.Context(), code)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
