package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hsik0225/dropthecode/internal/modules/review/dto"
	review "github.com/hsik0225/dropthecode/internal/modules/review/service"
	"github.com/hsik0225/dropthecode/pkg/response"
	appValidator "github.com/hsik0225/dropthecode/pkg/validator"
)

type ReviewHandler struct {
	service review.ReviewService
}

func NewReviewHandler(service review.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": appValidator.FormatValidationError(err)})
		return
	}

	created, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	found, err := h.service.GetReview(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *ReviewHandler) EditReview(c *gin.Context) {
	userID, reviewID, ok := h.actorAndReview(c)
	if !ok {
		return
	}

	var req dto.EditReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": appValidator.FormatValidationError(err)})
		return
	}

	if err := h.service.Edit(c.Request.Context(), userID, reviewID, req); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "review updated successfully"})
}

func (h *ReviewHandler) CancelReview(c *gin.Context) {
	userID, reviewID, ok := h.actorAndReview(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), userID, reviewID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "review cancelled successfully"})
}

func (h *ReviewHandler) AcceptReview(c *gin.Context) {
	h.transition(c, h.service.Accept, "review accepted")
}

func (h *ReviewHandler) DenyReview(c *gin.Context) {
	h.transition(c, h.service.Deny, "review denied")
}

func (h *ReviewHandler) CompleteReview(c *gin.Context) {
	h.transition(c, h.service.Complete, "review completed")
}

func (h *ReviewHandler) FinishReview(c *gin.Context) {
	userID, reviewID, ok := h.actorAndReview(c)
	if !ok {
		return
	}

	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": appValidator.FormatValidationError(err)})
		return
	}

	if err := h.service.Finish(c.Request.Context(), userID, reviewID, req); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "review finished"})
}

func (h *ReviewHandler) GetStudentReviews(c *gin.Context) {
	h.list(c, h.service.ListByStudent)
}

func (h *ReviewHandler) GetTeacherReviews(c *gin.Context) {
	h.list(c, h.service.ListByTeacher)
}

func (h *ReviewHandler) transition(c *gin.Context, op func(ctx context.Context, actorID, reviewID uuid.UUID) error, message string) {
	userID, reviewID, ok := h.actorAndReview(c)
	if !ok {
		return
	}

	if err := op(c.Request.Context(), userID, reviewID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *ReviewHandler) list(c *gin.Context, op func(ctx context.Context, memberID uuid.UUID, filter dto.FilterRequest) (*dto.ReviewPageResponse, error)) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	var filter dto.FilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := op(c.Request.Context(), memberID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *ReviewHandler) actorAndReview(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return uuid.Nil, uuid.Nil, false
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, reviewID, true
}
