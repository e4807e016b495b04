package handler

import (
	"net/http"

	"anoa.com/gooddeeds/internal/modules/act/dto"
	"anoa.com/gooddeeds/internal/modules/act/service"
	"anoa.com/gooddeeds/pkg/response"
	"github.com/gin-gonic/gin"
)

type ActHandler struct {
	service service.ActService
}

func NewActHandler(service service.ActService) *ActHandler {
	return &ActHandler{service: service}
}

func (h *ActHandler) CreateAct(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateActRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	act, err := h.service.CreateAct(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, act)
}

func (h *ActHandler) DeleteAct(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	actID, err := response.ParamID(c, "act_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteAct(c.Request.Context(), userID, actID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "act deleted"})
}

func (h *ActHandler) CreateBulkActs(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.BulkActRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.CreateBulkActs(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
