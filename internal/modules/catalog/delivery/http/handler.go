package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalog "github.com/hsik0225/dropthecode/internal/modules/catalog/service"
	"github.com/hsik0225/dropthecode/pkg/response"
)

type CatalogHandler struct {
	service catalog.CatalogService
}

func NewCatalogHandler(service catalog.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// GetAllLanguages lists every language with its valid skills, for the
// teacher registration form.
func (h *CatalogHandler) GetAllLanguages(c *gin.Context) {
	languages, err := h.service.GetAllLanguages(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, languages)
}
