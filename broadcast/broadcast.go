// broadcast/broadcast.go
package broadcast

import (
	"encoding/json"
	"errors"

	"github.com/JosMartins/Drinkster/game"
	"github.com/JosMartins/Drinkster/network"
	"github.com/JosMartins/Drinkster/session"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionBroadcaster delivers engine output to live sessions. Implements
// game.Broadcaster.
type SessionBroadcaster struct {
	sessions *session.Manager
}

func NewSessionBroadcaster(sessions *session.Manager) *SessionBroadcaster {
	return &SessionBroadcaster{sessions: sessions}
}

// DeliverChallenge sends a turn notice to one player's session.
func (b *SessionBroadcaster) DeliverChallenge(sessionID string, notice *game.ChallengeNotice) error {
	sess, ok := b.sessions.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	data, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	return sess.Send(network.MsgTypeChallenge, data)
}

// SendToSession marshals any payload to a single session.
func (b *SessionBroadcaster) SendToSession(sessionID string, msgID uint16, payload any) error {
	sess, ok := b.sessions.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return sess.Send(msgID, data)
}

// BroadcastToSessions fans a payload out to many sessions; missing or
// failing sessions are skipped.
func (b *SessionBroadcaster) BroadcastToSessions(sessionIDs []string, msgID uint16, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	for _, id := range sessionIDs {
		sess, ok := b.sessions.Get(id)
		if !ok {
			continue
		}
		if err := sess.Send(msgID, data); err != nil {
			// 发送失败的连接由读循环负责清理
			continue
		}
	}
	return nil
}
