package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	member "github.com/hsik0225/dropthecode/internal/modules/member/service"
	"github.com/hsik0225/dropthecode/pkg/response"
)

type MemberHandler struct {
	service member.MemberService
}

func NewMemberHandler(service member.MemberService) *MemberHandler {
	return &MemberHandler{service: service}
}

func (h *MemberHandler) GetMe(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	me, err := h.service.GetMember(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, me)
}

func (h *MemberHandler) DeleteMe(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteMember(c.Request.Context(), userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member deleted successfully"})
}
