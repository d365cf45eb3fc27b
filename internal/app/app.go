package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"gorm.io/gorm"

	"github.com/kolshuk/kolshuk/internal/config"
	"github.com/kolshuk/kolshuk/internal/domains/commerce"
	"github.com/kolshuk/kolshuk/internal/domains/conversation"
	convoRepo "github.com/kolshuk/kolshuk/internal/repository/conversation"
	"github.com/kolshuk/kolshuk/internal/server"
	"github.com/kolshuk/kolshuk/internal/types"
	"github.com/kolshuk/kolshuk/pkg/Logger"
	"github.com/kolshuk/kolshuk/pkg/assistant"
	"github.com/kolshuk/kolshuk/pkg/assistant/factory"
	"github.com/kolshuk/kolshuk/pkg/intent"
)

// App holds the wired application dependencies.
type App struct {
	Config *config.Settings
	Logger *Logger.Logger
	DB     *gorm.DB
	RC     *redis.Client

	ConversationRepo    types.ConversationRepository
	ConversationService *conversation.Service
	Assistant           assistant.Assistant
	Catalog             commerce.Catalog
	ServerDeps          server.Dependencies
}

// NewApp wires all dependencies.
func NewApp(ctx context.Context, cfg *config.Settings, logger *Logger.Logger, db *gorm.DB, rc *redis.Client) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		RC:     rc,
	}
	if err := app.setupDependencies(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) setupDependencies(ctx context.Context) error {
	msgTTL := time.Duration(a.Config.Pipeline.MsgTTLMins) * time.Minute
	if msgTTL <= 0 {
		msgTTL = 24 * time.Hour
	}
	a.ConversationRepo = convoRepo.NewGormConvoRepo(a.DB, a.RC, msgTTL)

	parser, err := buildParser(a.Config.Pipeline.Languages)
	if err != nil {
		return err
	}
	a.ConversationService = conversation.NewService(a.ConversationRepo, parser, a.Logger)

	assist, err := factory.New(ctx, a.Config.Assistant, a.Logger)
	if err != nil {
		return fmt.Errorf("assistant setup: %w", err)
	}
	a.Assistant = assist

	a.Catalog = commerce.NewHTTPCatalog(a.Config.Commerce.CatalogURL, a.Config.Commerce.Timeout())

	a.ServerDeps = server.NewServerDependencies(
		a.Logger,
		a.Config,
		a.ConversationService,
		a.Assistant,
		a.Catalog,
	)
	return nil
}

// buildParser registers the configured language packs; an empty list
// means every shipped pack.
func buildParser(languages []string) (*intent.Parser, error) {
	if len(languages) == 0 {
		return intent.Default(), nil
	}

	var packs []*intent.Pack
	for _, tag := range languages {
		switch tag {
		case "en":
			packs = append(packs, intent.English())
		case "he":
			packs = append(packs, intent.Hebrew())
		case "ar":
			packs = append(packs, intent.Arabic())
		default:
			return nil, fmt.Errorf("no language pack for %q", tag)
		}
	}
	return intent.NewParser(packs...), nil
}
