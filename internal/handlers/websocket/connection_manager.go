package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kolshuk/kolshuk/pkg/Logger"
)

// ConnectionManager tracks live sessions and reaps the idle ones.
type ConnectionManager struct {
	logger         *Logger.Logger
	sessions       map[uuid.UUID]*Session
	mutex          sync.RWMutex
	cleanupTicker  *time.Ticker
	stopCleanup    chan struct{}
	sessionTimeout time.Duration
}

func NewConnectionManager(logger *Logger.Logger) *ConnectionManager {
	cm := &ConnectionManager{
		logger:         logger,
		sessions:       make(map[uuid.UUID]*Session),
		stopCleanup:    make(chan struct{}),
		sessionTimeout: 30 * time.Minute,
	}
	cm.startCleanupRoutine()
	return cm
}

// Register adds a session to the registry.
func (cm *ConnectionManager) Register(session *Session) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	cm.sessions[session.SessionID] = session
	cm.logger.Infof("registered session %s (lang %s)", session.SessionID, session.Language)
}

// Unregister removes and closes a session.
func (cm *ConnectionManager) Unregister(sessionID uuid.UUID) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if session, exists := cm.sessions[sessionID]; exists {
		if err := session.Close(); err != nil {
			cm.logger.Errorf("error closing session %s: %v", sessionID, err)
		}
		delete(cm.sessions, sessionID)
		cm.logger.Infof("unregistered session %s", sessionID)
	}
}

// GetSession retrieves a session by id.
func (cm *ConnectionManager) GetSession(sessionID uuid.UUID) (*Session, bool) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	session, exists := cm.sessions[sessionID]
	return session, exists
}

// SessionCount returns the number of active sessions.
func (cm *ConnectionManager) SessionCount() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.sessions)
}

// SetSessionTimeout sets the idle expiry window.
func (cm *ConnectionManager) SetSessionTimeout(timeout time.Duration) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.sessionTimeout = timeout
}

func (cm *ConnectionManager) startCleanupRoutine() {
	cm.cleanupTicker = time.NewTicker(5 * time.Minute)

	go func() {
		for {
			select {
			case <-cm.cleanupTicker.C:
				cm.cleanupExpiredSessions()
			case <-cm.stopCleanup:
				cm.cleanupTicker.Stop()
				return
			}
		}
	}()
}

func (cm *ConnectionManager) cleanupExpiredSessions() {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	expired := make([]uuid.UUID, 0)
	for id, session := range cm.sessions {
		if session.IsExpired(cm.sessionTimeout) {
			expired = append(expired, id)
		}
	}

	for _, id := range expired {
		if session := cm.sessions[id]; session != nil {
			session.Close()
		}
		delete(cm.sessions, id)
	}

	if len(expired) > 0 {
		cm.logger.Infof("cleaned up %d expired sessions", len(expired))
	}
}

// Close shuts down the manager and every live session.
func (cm *ConnectionManager) Close() error {
	close(cm.stopCleanup)

	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	for id, session := range cm.sessions {
		if err := session.Close(); err != nil {
			cm.logger.Errorf("error closing session %s: %v", id, err)
		}
	}
	cm.sessions = make(map[uuid.UUID]*Session)
	cm.logger.Infof("connection manager closed")
	return nil
}

// Stats reports connection statistics for the stats endpoint.
func (cm *ConnectionManager) Stats() map[string]interface{} {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	sessionStats := make([]map[string]interface{}, 0, len(cm.sessions))
	for _, session := range cm.sessions {
		sessionStats = append(sessionStats, map[string]interface{}{
			"session_id":   session.SessionID.String(),
			"language":     session.Language,
			"connected_at": session.ConnectedAt,
			"last_active":  session.LastActive(),
			"is_active":    session.IsAlive(),
		})
	}

	return map[string]interface{}{
		"active_sessions": len(cm.sessions),
		"session_timeout": cm.sessionTimeout.String(),
		"sessions":        sessionStats,
	}
}
