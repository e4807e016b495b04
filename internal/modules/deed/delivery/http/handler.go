package handler

import (
	"net/http"

	"anoa.com/gooddeeds/internal/modules/deed/dto"
	"anoa.com/gooddeeds/internal/modules/deed/service"
	"anoa.com/gooddeeds/pkg/response"
	"github.com/gin-gonic/gin"
)

type DeedHandler struct {
	service service.DeedService
}

func NewDeedHandler(service service.DeedService) *DeedHandler {
	return &DeedHandler{service: service}
}

func (h *DeedHandler) CreateDeed(c *gin.Context) {
	var req dto.CreateDeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	deed, err := h.service.CreateDeed(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, deed)
}

func (h *DeedHandler) ListDeeds(c *gin.Context) {
	var query dto.ListDeedsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	deeds, err := h.service.ListDeeds(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": deeds})
}
