// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JosMartins/Drinkster/network"
)

// Session is one live connection. Its ID doubles as the caller-supplied
// session token the game core compares for authorization; reconnecting
// clients get a fresh session and rebind their player to its ID.
type Session struct {
	ID         string
	Conn       network.Connection
	CreatedAt  time.Time
	LastActive time.Time

	mu       sync.RWMutex
	playerID uuid.UUID
	roomID   uuid.UUID
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

// BindPlayer associates the session with a player in a room.
func (s *Session) BindPlayer(playerID, roomID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerID = playerID
	s.roomID = roomID
}

func (s *Session) PlayerID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playerID
}

func (s *Session) RoomID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomID
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.LastActive = time.Now()
	return s.Conn.Send(msgID, data)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager 会话管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
