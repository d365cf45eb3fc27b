package conversation

import (
	"context"

	"github.com/google/uuid"

	"github.com/kolshuk/kolshuk/internal/types"
	"github.com/kolshuk/kolshuk/pkg/Logger"
	"github.com/kolshuk/kolshuk/pkg/intent"
)

// historyWindow is how many stored turns a reconnecting session
// replays into its tracker.
const historyWindow = 50

// Service builds trackers on top of the persistent message store, so
// a session that reconnects keeps its history and its greeted state.
type Service struct {
	repo   types.ConversationRepository
	parser *intent.Parser
	logger *Logger.Logger
}

func NewService(repo types.ConversationRepository, parser *intent.Parser, logger *Logger.Logger) *Service {
	return &Service{repo: repo, parser: parser, logger: logger}
}

func (s *Service) Parser() *intent.Parser { return s.parser }

// Restore returns a tracker seeded with the session's stored history.
// Replaying through Append re-derives the greeted flag. A store
// failure degrades to an empty tracker; the session still works, it
// just greets again.
func (s *Service) Restore(ctx context.Context, sessionID uuid.UUID, language string) *StateTracker {
	tracker := NewTracker(sessionID, language, s.parser)
	if s.repo == nil {
		return tracker
	}

	msgs, err := s.repo.FetchSessionMessages(ctx, sessionID, 0, historyWindow-1)
	if err != nil {
		if s.logger != nil {
			s.logger.Warnf("restore session %s: %v", sessionID, err)
		}
		return tracker
	}
	for _, m := range msgs {
		tracker.Append(m)
	}
	return tracker
}

// Repository exposes the store for the orchestrator's persistence.
func (s *Service) Repository() types.ConversationRepository { return s.repo }
