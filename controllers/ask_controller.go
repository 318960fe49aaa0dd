package controllers

import (
	"context"
	"net/http"

	"askbrooks/models"
	"askbrooks/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Asker answers questions.
type Asker interface {
	Ask(ctx context.Context, question string) (*models.AskResponse, error)
}

type AskController struct {
	asker  Asker
	logger *zap.Logger
}

func NewAskController(asker *services.AskService, logger *zap.Logger) *AskController {
	return &AskController{asker: asker, logger: logger}
}

// Ask handles POST /ask.
func (c *AskController) Ask(ctx *gin.Context) {
	var req models.AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "Invalid request body: " + err.Error()})
		return
	}

	resp, err := c.asker.Ask(ctx.Request.Context(), req.Question)
	if err != nil {
		status := services.StatusCode(err)
		if status >= http.StatusInternalServerError {
			c.logger.Error("ask failed", zap.Int("status", status), zap.Error(err))
		}
		_ = ctx.Error(err)
		ctx.JSON(status, models.ErrorResponse{Detail: services.Detail(err)})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
