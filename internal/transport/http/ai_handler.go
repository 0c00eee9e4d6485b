package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coursehub/internal/application/usecase"
	"coursehub/internal/domain"
)

type AiHandler struct {
	suggest *usecase.SuggestUseCase
}

func NewAiHandler(suggest *usecase.SuggestUseCase) *AiHandler {
	return &AiHandler{suggest: suggest}
}

type askReq struct {
	Query string `json:"query" binding:"required,max=2000"`
}

// POST /api/v1/ai/ask
func (h *AiHandler) Ask(c *gin.Context) {
	var req askReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.suggest.Ask(c, req.Query)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Query must not be empty"})
			return
		}
		// Ошибка апстрима — не наша: 502, а не 500
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to get AI suggestions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
