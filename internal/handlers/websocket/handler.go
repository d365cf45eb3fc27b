package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kolshuk/kolshuk/internal/config"
	"github.com/kolshuk/kolshuk/internal/domains/commerce"
	"github.com/kolshuk/kolshuk/internal/domains/conversation"
	"github.com/kolshuk/kolshuk/internal/domains/voice"
	"github.com/kolshuk/kolshuk/pkg/Logger"
	"github.com/kolshuk/kolshuk/pkg/assistant"
	"github.com/kolshuk/kolshuk/pkg/io/stt"
	"github.com/kolshuk/kolshuk/pkg/io/synth"
)

const defaultAudioRingBytes = 1024 * 1024

// Handler owns the client-facing WebSocket surface. Each accepted
// connection gets its own pipeline: tracker, dispatcher, orchestrator
// and optionally a synthesis session, all torn down on disconnect.
type Handler struct {
	logger   *Logger.Logger
	settings *config.Settings
	convo    *conversation.Service
	assist   assistant.Assistant
	catalog  commerce.Catalog

	// newRecognizer enables server-side recognition; nil means the
	// client transcribes and sends transcript frames.
	newRecognizer func(language string) (stt.Recognizer, error)

	connectionManager *ConnectionManager
	inputManager      *InputManager
	upgrader          websocket.Upgrader
}

func NewHandler(
	logger *Logger.Logger,
	settings *config.Settings,
	convo *conversation.Service,
	assist assistant.Assistant,
	catalog commerce.Catalog,
) *Handler {
	return &Handler{
		logger:            logger,
		settings:          settings,
		convo:             convo,
		assist:            assist,
		catalog:           catalog,
		connectionManager: NewConnectionManager(logger),
		inputManager:      NewInputManager(logger),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev-only
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// SetRecognizerFactory switches recognition to the server side.
func (h *Handler) SetRecognizerFactory(f func(language string) (stt.Recognizer, error)) {
	h.newRecognizer = f
}

// RegisterRoutes registers WebSocket routes
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	ws := router.Group("/ws")
	{
		ws.GET("", h.HandleSession)
		ws.GET("/stats", h.HandleStats)
	}
}

// HandleSession upgrades the connection and runs it until the client
// goes away.
func (h *Handler) HandleSession(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sessionID := h.resolveSessionID(c)
	language := h.resolveLanguage(c)

	session := NewSession(sessionID, language, conn, defaultAudioRingBytes, h.logger)
	h.connectionManager.Register(session)
	defer h.connectionManager.Unregister(sessionID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vs := h.openVoice(ctx, session)
	system, err := h.buildPipeline(ctx, session, vs)
	if err != nil {
		h.logger.Errorf("pipeline setup for %s: %v", sessionID, err)
		session.SendError("SETUP_FAILED", "could not start session")
		return
	}
	session.System = system

	go system.Run(ctx)
	go session.WritePump(ctx)
	go NewEventBridge(h.logger).Run(ctx, session)

	modality := h.resolveModality(c, vs != nil)
	session.PushEvent(voice.SessionEvent{
		Type:      voice.EventSetModality,
		SessionID: sessionID,
		Modality:  modality,
		Timestamp: time.Now(),
	})

	session.SendMessage(MessageTypeConnected, ConnectedMessage{
		SessionID: sessionID.String(),
		Language:  language,
		Modality:  string(modality),
		Voice:     vs != nil,
	})
	if vs != nil {
		session.SendMessage(MessageTypeAudioFormat, AudioFormatMessage{
			Encoding:   "pcm_s16le",
			SampleRate: 16000,
			Channels:   1,
		})
	}

	rec := h.openRecognizer(ctx, session)
	if rec != nil {
		defer rec.Close()
	}

	h.readLoop(ctx, session, rec)

	// a clean close lets the pipeline flush; ctx cancel is the backstop
	if err := session.PushEvent(voice.SessionEvent{
		Type:      voice.EventClose,
		SessionID: sessionID,
		Timestamp: time.Now(),
	}); err != nil {
		h.logger.Debugf("close event for %s: %v", sessionID, err)
	}
}

// HandleStats provides connection statistics
func (h *Handler) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"data":   h.connectionManager.Stats(),
	})
}

// Close shuts down the handler and every live session.
func (h *Handler) Close() error {
	return h.connectionManager.Close()
}

func (h *Handler) readLoop(ctx context.Context, session *Session, rec stt.Recognizer) {
	for {
		messageType, data, err := session.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Errorf("ws read error for %s: %v", session.SessionID, err)
			} else {
				h.logger.Infof("connection closed for session %s", session.SessionID)
			}
			return
		}
		session.Touch()

		switch messageType {
		case websocket.TextMessage:
			h.inputManager.HandleMessage(session, data)

		case websocket.BinaryMessage:
			if rec == nil {
				h.logger.Debugf("dropping %d audio bytes from %s: recognition runs client-side", len(data), session.SessionID)
				continue
			}
			if err := rec.Feed(ctx, data); err != nil {
				h.logger.Warnf("recognizer feed for %s: %v", session.SessionID, err)
			}
		}
	}
}

// buildPipeline assembles the per-session conversation stack.
func (h *Handler) buildPipeline(ctx context.Context, session *Session, vs *synth.Session) (*voice.System, error) {
	tracker := h.convo.Restore(ctx, session.SessionID, session.Language)

	dispatcher, err := commerce.New(h.catalog, commerce.NewMemoryCart(), h.logger)
	if err != nil {
		return nil, err
	}

	threshold := h.settings.Pipeline.ConfidenceThreshold
	if threshold <= 0 {
		threshold = 0.6
	}

	orch := conversation.NewOrchestrator(
		h.convo.Parser(),
		dispatcher,
		h.assist,
		tracker,
		h.convo.Repository(),
		h.logger,
		threshold,
		h.settings.Voice.SegmentDelay(),
	)

	return voice.NewSystem(session.SessionID, orch, vs, h.logger), nil
}

// openVoice dials the synthesis backend for this session. Failure is
// not fatal: the session starts text-only and the client is told.
func (h *Handler) openVoice(ctx context.Context, session *Session) *synth.Session {
	cfg := h.settings.Voice
	if !cfg.Enabled {
		return nil
	}
	voiceID, ok := cfg.VoiceFor(session.Language)
	if !ok {
		h.logger.Warnf("no voice configured for language %s, session %s is text-only", session.Language, session.SessionID)
		return nil
	}

	vs := synth.NewSession(synth.Options{
		URL:    cfg.SynthURL,
		APIKey: cfg.APIKey,
		Voice: synth.VoiceProfile{
			VoiceID:  voiceID,
			Language: session.Language,
			Settings: synth.VoiceSettings{
				Stability:       cfg.Stability,
				SimilarityBoost: cfg.Similarity,
				Style:           cfg.Style,
			},
		},
		Keepalive:  cfg.KeepaliveWindow(),
		AckTimeout: time.Duration(cfg.AckTimeoutSecs) * time.Second,
	}, session, h.logger)

	openCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := vs.Open(openCtx); err != nil {
		h.logger.Warnf("synthesis backend unavailable for %s, starting text-only: %v", session.SessionID, err)
		return nil
	}
	return vs
}

func (h *Handler) openRecognizer(ctx context.Context, session *Session) stt.Recognizer {
	if h.newRecognizer == nil {
		return nil
	}
	rec, err := h.newRecognizer(session.Language)
	if err != nil {
		h.logger.Warnf("recognizer for %s: %v, expecting client transcripts", session.SessionID, err)
		return nil
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-rec.Events():
				if !ok {
					return
				}
				h.forwardTranscript(session, ev)
			}
		}
	}()
	return rec
}

func (h *Handler) forwardTranscript(session *Session, ev stt.TranscriptEvent) {
	eventType := voice.EventSpeechStart
	text := ""
	if ev.IsFinal {
		eventType = voice.EventTranscriptFinal
		text = ev.Text
	}
	if err := session.PushEvent(voice.SessionEvent{
		Type:      eventType,
		SessionID: session.SessionID,
		Text:      text,
		Timestamp: ev.Timestamp,
	}); err != nil {
		h.logger.Warnf("drop %s for %s: %v", eventType, session.SessionID, err)
	}
}

func (h *Handler) resolveSessionID(c *gin.Context) uuid.UUID {
	if raw := c.Query("sessionId"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return id
		}
		h.logger.Warnf("invalid sessionId %q, minting a new one", raw)
	}
	return uuid.New()
}

// resolveLanguage validates the requested language against the parser's
// packs; unsupported tags fall back to the first registered language.
func (h *Handler) resolveLanguage(c *gin.Context) string {
	supported := h.convo.Parser().Languages()
	requested := c.Query("lang")
	for _, tag := range supported {
		if tag == requested {
			return requested
		}
	}
	if requested != "" {
		h.logger.Warnf("unsupported language %q, using %s", requested, supported[0])
	}
	return supported[0]
}

func (h *Handler) resolveModality(c *gin.Context, voiceUp bool) voice.Modality {
	mode := c.Query("mode")
	switch mode {
	case "text":
		return voice.ModalityText
	case "voice":
		return voice.ModalityVoice
	}
	if voiceUp {
		return voice.ModalityVoice
	}
	return voice.ModalityText
}
