package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports liveness. It never touches the NotebookLM client.
func HealthCheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
