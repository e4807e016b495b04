package handler

import (
	"net/http"

	"anoa.com/gooddeeds/internal/modules/testimony/dto"
	"anoa.com/gooddeeds/internal/modules/testimony/service"
	"anoa.com/gooddeeds/pkg/response"
	"github.com/gin-gonic/gin"
)

type TestimonyHandler struct {
	service service.TestimonyService
}

func NewTestimonyHandler(service service.TestimonyService) *TestimonyHandler {
	return &TestimonyHandler{service: service}
}

func (h *TestimonyHandler) CreateTestimony(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateTestimonyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	testimony, err := h.service.CreateTestimony(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, testimony)
}

func (h *TestimonyHandler) DeleteTestimony(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	testimonyID, err := response.ParamID(c, "testimony_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteTestimony(c.Request.Context(), userID, testimonyID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "testimony deleted"})
}
