package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/kolshuk/kolshuk/internal/domains/commerce"
	"github.com/kolshuk/kolshuk/internal/types"
	"github.com/kolshuk/kolshuk/pkg/Logger"
	"github.com/kolshuk/kolshuk/pkg/assistant"
	"github.com/kolshuk/kolshuk/pkg/intent"
)

// CommandDispatcher is the deterministic-command capability.
// *commerce.Dispatcher satisfies it.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, cmd intent.ParsedCommand, language string) (*commerce.Result, error)
}

// Speaker is the voice output capability, the synthesis session's
// SendText in production. Nil speaker means text-only.
type Speaker interface {
	SendText(ctx context.Context, segment string, flush bool) error
}

// Turn is the outcome of one completed user turn. Text is always set;
// Spoken reports whether synthesis accepted the reply.
type Turn struct {
	Text        string
	Products    []commerce.Product
	Suggestions []string
	Spoken      bool
	Farewell    bool
}

// Orchestrator sequences a turn: parse, gate on confidence, dispatch
// or delegate to the assistant, scrub, record, speak.
type Orchestrator struct {
	parser     *intent.Parser
	dispatcher CommandDispatcher
	assist     assistant.Assistant
	tracker    *StateTracker
	repo       types.ConversationRepository // optional
	logger     *Logger.Logger

	threshold    float64
	segmentDelay time.Duration
}

func NewOrchestrator(
	parser *intent.Parser,
	dispatcher CommandDispatcher,
	assist assistant.Assistant,
	tracker *StateTracker,
	repo types.ConversationRepository,
	logger *Logger.Logger,
	threshold float64,
	segmentDelay time.Duration,
) *Orchestrator {
	return &Orchestrator{
		parser:       parser,
		dispatcher:   dispatcher,
		assist:       assist,
		tracker:      tracker,
		repo:         repo,
		logger:       logger,
		threshold:    threshold,
		segmentDelay: segmentDelay,
	}
}

// HandleTranscript runs one final transcript through the pipeline.
// The turn never fails because voice is unavailable; the text reply is
// returned regardless.
func (o *Orchestrator) HandleTranscript(ctx context.Context, text string, speaker Speaker) (*Turn, error) {
	language := o.tracker.Language()
	set := repliesFor(language)

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		// recognition produced nothing; re-prompt without recording a turn
		turn := &Turn{Text: set.reprompt}
		turn.Spoken = o.speak(ctx, turn.Text, speaker)
		return turn, nil
	}

	cmd := o.parser.Parse(trimmed, language)
	o.record(ctx, types.NewUserMessage(o.tracker.SessionID(), trimmed, language, cmd.Intent))

	wasGreeted := o.tracker.HasGreeted()
	turn := &Turn{}

	switch {
	case cmd.Intent == intent.Greeting:
		if wasGreeted {
			turn.Text = set.greetingAck
		} else {
			turn.Text = set.greeting
			o.tracker.MarkGreeted()
		}

	case cmd.Intent == intent.Farewell || o.tracker.IsFarewell(trimmed):
		turn.Text = set.farewell
		turn.Farewell = true

	case cmd.Intent == intent.Unknown:
		o.delegate(ctx, trimmed, language, set, turn)

	case cmd.Confidence < o.threshold:
		turn.Text = set.clarify

	default:
		res, err := o.dispatcher.Dispatch(ctx, cmd, language)
		switch {
		case err != nil:
			if o.logger != nil {
				o.logger.Errorf("dispatch %s: %v", cmd.Intent, err)
			}
			turn.Text = set.turnFailed
		case res.Handled:
			turn.Text = res.Reply
			turn.Products = res.Products
		default:
			o.delegate(ctx, trimmed, language, set, turn)
		}
	}

	if wasGreeted {
		turn.Text = o.tracker.ScrubGreeting(turn.Text)
	}

	o.record(ctx, types.NewAssistantMessage(o.tracker.SessionID(), turn.Text, language))
	turn.Spoken = o.speak(ctx, turn.Text, speaker)
	return turn, nil
}

// delegate hands the turn to the free-form assistant with the full
// rolling history. Assistant failure degrades to an apology, never an
// aborted turn.
func (o *Orchestrator) delegate(ctx context.Context, query, language string, set replySet, turn *Turn) {
	if o.assist == nil {
		turn.Text = set.clarify
		return
	}
	history := types.MessagesToHistory(o.tracker.History())
	reply, err := o.assist.Respond(ctx, query, language, history)
	if err != nil {
		if o.logger != nil {
			o.logger.Errorf("assistant call: %v", err)
		}
		turn.Text = set.turnFailed
		return
	}
	turn.Text = reply.Text
	turn.Suggestions = reply.Suggestions
}

// speak pipelines sentence segments into the synthesis session. The
// first segment goes out synchronously so the turn can report whether
// voice output is up; the rest follow in the background with a short
// delay between them so the backend is not flooded. Cancelling ctx
// stops the tail, which is how barge-in cuts a long reply short
// without the caller waiting out the delays. Returns false when voice
// output is unavailable for this turn.
func (o *Orchestrator) speak(ctx context.Context, text string, speaker Speaker) bool {
	if speaker == nil {
		return false
	}
	segments := SplitSegments(text)
	if len(segments) == 0 {
		return false
	}

	if err := speaker.SendText(ctx, segments[0], len(segments) == 1); err != nil {
		if o.logger != nil {
			o.logger.Warnf("voice output unavailable, text fallback: %v", err)
		}
		return false
	}
	if len(segments) > 1 {
		go o.speakTail(ctx, segments[1:], speaker)
	}
	return true
}

// speakTail feeds the remaining segments of an utterance. Runs off the
// turn goroutine; exits quietly on cancellation or send failure (the
// synthesis session surfaces failures through its own event channel).
func (o *Orchestrator) speakTail(ctx context.Context, segments []string, speaker Speaker) {
	for i, seg := range segments {
		if o.segmentDelay > 0 {
			select {
			case <-time.After(o.segmentDelay):
			case <-ctx.Done():
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		if err := speaker.SendText(ctx, seg, i == len(segments)-1); err != nil {
			if o.logger != nil {
				o.logger.Warnf("dropping rest of reply: %v", err)
			}
			return
		}
	}
}

// record appends to the in-memory tracker and persists best-effort.
func (o *Orchestrator) record(ctx context.Context, msg types.Message) {
	o.tracker.Append(msg)
	if o.repo == nil {
		return
	}
	if _, err := o.repo.CreateMessage(ctx, msg.SessionID, msg); err != nil && o.logger != nil {
		o.logger.Warnf("persist message: %v", err)
	}
}
