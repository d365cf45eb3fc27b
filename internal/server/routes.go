package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kolshuk/kolshuk/internal/config"
	"github.com/kolshuk/kolshuk/internal/domains/commerce"
	"github.com/kolshuk/kolshuk/internal/domains/conversation"
	wshandler "github.com/kolshuk/kolshuk/internal/handlers/websocket"
	"github.com/kolshuk/kolshuk/pkg/Logger"
	"github.com/kolshuk/kolshuk/pkg/assistant"
)

// Dependencies is everything the HTTP surface needs.
type Dependencies struct {
	Logger              *Logger.Logger
	Configs             *config.Settings
	ConversationService *conversation.Service
	Assistant           assistant.Assistant
	Catalog             commerce.Catalog
}

func NewServerDependencies(
	logger *Logger.Logger,
	configs *config.Settings,
	conversationService *conversation.Service,
	assist assistant.Assistant,
	catalog commerce.Catalog,
) Dependencies {
	return Dependencies{
		Logger:              logger,
		Configs:             configs,
		ConversationService: conversationService,
		Assistant:           assist,
		Catalog:             catalog,
	}
}

// InitializeRoutes wires the health endpoints and the WebSocket
// surface. The returned handler must be closed on shutdown.
func InitializeRoutes(r *gin.Engine, dep Dependencies) *wshandler.Handler {
	r.GET("/", func(ctx *gin.Context) { ctx.JSON(http.StatusOK, gin.H{"message": "Server healthy"}) })
	r.GET("/health", func(ctx *gin.Context) { ctx.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	h := wshandler.NewHandler(
		dep.Logger,
		dep.Configs,
		dep.ConversationService,
		dep.Assistant,
		dep.Catalog,
	)
	h.RegisterRoutes(r)
	return h
}
