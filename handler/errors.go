package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CaioZinDaLua/secure-contract-ai-review/middleware"
	"github.com/CaioZinDaLua/secure-contract-ai-review/service"
)

// respondError converts a service-level failure into the caller-facing
// response. Upstream detail stays in the server logs.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var accessErr *service.AccessError
	var upstreamErr *service.UpstreamError
	var consistencyErr *service.ConsistencyError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Reason})

	case errors.As(err, &accessErr):
		c.JSON(http.StatusForbidden, gin.H{"error": accessErr.Reason})

	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato não encontrado"})

	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": service.ErrRateLimited.Error()})

	case errors.As(err, &upstreamErr):
		slog.Error("upstream call failed",
			"op", upstreamErr.Op,
			"status", upstreamErr.Status,
			"detail", upstreamErr.Detail,
			"request_id", middleware.GetRequestID(c),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erro na comunicação com o serviço externo. Tente novamente."})

	case errors.As(err, &consistencyErr):
		slog.Error("version collision detected",
			"error", err,
			"request_id", middleware.GetRequestID(c),
		)
		c.JSON(http.StatusConflict, gin.H{"error": "Conflito ao salvar nova versão. Tente novamente."})

	default:
		slog.Error("request failed",
			"error", err,
			"request_id", middleware.GetRequestID(c),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
	}
}
