package server

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/JosMartins/Drinkster/game"
	"github.com/JosMartins/Drinkster/logger"
	"github.com/JosMartins/Drinkster/models"
	"github.com/JosMartins/Drinkster/network"
	"github.com/JosMartins/Drinkster/session"
)

// Wire payloads. The session id doubles as the caller's token; it is never
// read from the payload.

type playerPayload struct {
	Name       string                   `json:"name"`
	Sex        models.Sex               `json:"sex"`
	Difficulty *models.DifficultyValues `json:"difficulty,omitempty"`
}

type createRoomRequest struct {
	Name           string          `json:"name"`
	Private        bool            `json:"private"`
	Password       string          `json:"password,omitempty"`
	Mode           models.RoomMode `json:"mode"`
	RememberCount  int             `json:"rememberCount"`
	ShowChallenges bool            `json:"showChallenges"`
	Player         playerPayload   `json:"player"`
}

type joinRoomRequest struct {
	RoomID   uuid.UUID     `json:"roomId"`
	Password string        `json:"password,omitempty"`
	Player   playerPayload `json:"player"`
}

type roomPlayerRequest struct {
	RoomID   uuid.UUID `json:"roomId"`
	PlayerID uuid.UUID `json:"playerId"`
}

type roomRequest struct {
	RoomID uuid.UUID `json:"roomId"`
}

type difficultyRequest struct {
	RoomID     uuid.UUID               `json:"roomId"`
	PlayerID   uuid.UUID               `json:"playerId"`
	Difficulty models.DifficultyValues `json:"difficulty"`
}

type challengeModeRequest struct {
	RoomID         uuid.UUID `json:"roomId"`
	ShowChallenges bool      `json:"showChallenges"`
}

type challengeResponseRequest struct {
	RoomID   uuid.UUID `json:"roomId"`
	PlayerID uuid.UUID `json:"playerId"`
	// Action is "drank" or "completed".
	Action string `json:"action"`
}

type challengeCompletedRequest struct {
	RoomID   uuid.UUID `json:"roomId"`
	PlayerID uuid.UUID `json:"playerId"`
	Drunk    bool      `json:"drunk"`
}

type roomCreatedResponse struct {
	RoomID   uuid.UUID `json:"roomId"`
	PlayerID uuid.UUID `json:"playerId"`
}

type joinedResponse struct {
	RoomID   uuid.UUID        `json:"roomId"`
	PlayerID uuid.UUID        `json:"playerId"`
	Room     game.RoomSummary `json:"room"`
}

type ackResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *GameServer) sendJSON(sess *session.Session, msgID uint16, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Errorf("Failed to marshal response: %v", err)
		return
	}
	if err := sess.Send(msgID, data); err != nil {
		logger.Log.Debugf("Failed to send to session %s: %v", sess.GetID(), err)
	}
}

func (s *GameServer) sendError(sess *session.Session, err error) {
	resp := errorResponse{Code: errorCode(err), Message: err.Error()}
	s.sendJSON(sess, network.MsgTypeError, resp)
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrRoomNotFound), errors.Is(err, game.ErrPlayerNotFound):
		return "NOT_FOUND"
	case errors.Is(err, game.ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, game.ErrInvalidState):
		return "INVALID_STATE"
	case game.IsValidation(err):
		return "VALIDATION"
	default:
		return "INTERNAL"
	}
}

func decode[T any](packet *network.Packet) (*T, error) {
	var req T
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func newPlayer(payload playerPayload, admin bool, sessionID string) *game.Player {
	values := models.DefaultDifficultyValues()
	if payload.Difficulty != nil {
		values = *payload.Difficulty
	}
	return game.NewPlayer(payload.Name, payload.Sex, values, admin, sessionID)
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	req, err := decode[createRoomRequest](packet)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	admin := newPlayer(req.Player, true, sess.GetID())
	// An omitted remember count falls back to the configured default;
	// explicit negatives still fail validation.
	if req.RememberCount == 0 {
		req.RememberCount = s.rememberCount
	}
	room, err := s.registry.CreateRoom(req.Name, req.Private, req.Password, admin,
		req.Mode, req.RememberCount, req.ShowChallenges)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	sess.BindPlayer(admin.ID, room.ID)
	s.monitor.SetActiveRooms(s.registry.RoomCount())
	logger.Log.Infof("Session %s created room %s (%s)", sess.GetID(), room.ID, room.Name)
	s.sendJSON(sess, network.MsgTypeRoomCreated, roomCreatedResponse{RoomID: room.ID, PlayerID: admin.ID})
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	req, err := decode[joinRoomRequest](packet)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	room, err := s.registry.Room(req.RoomID)
	if err != nil {
		s.sendError(sess, err)
		return
	}
	if room.Private && room.Password != req.Password {
		s.sendError(sess, game.ErrUnauthorized)
		return
	}

	player := newPlayer(req.Player, false, sess.GetID())
	if err := s.registry.JoinRoom(req.RoomID, player); err != nil {
		s.sendError(sess, err)
		return
	}

	sess.BindPlayer(player.ID, room.ID)

	room.Lock()
	summary := game.NewRoomSummary(room)
	room.Unlock()
	s.sendJSON(sess, network.MsgTypeRoomJoined, joinedResponse{
		RoomID:   room.ID,
		PlayerID: player.ID,
		Room:     summary,
	})
}

func (s *GameServer) handleLeaveRoom(sess *session.Session, packet *network.Packet) {
	req, err := decode[roomPlayerRequest](packet)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	if err := s.registry.LeaveRoom(req.RoomID, req.PlayerID, sess.GetID()); err != nil {
		s.sendError(sess, err)
		return
	}
	s.monitor.SetActiveRooms(s.registry.RoomCount())
	s.sendJSON(sess, network.MsgTypeAck, ackResponse{OK: true})
}

func (s *GameServer) handleKickPlayer(sess *session.Session, packet *network.Packet) {
	req, err := decode[roomPlayerRequest](packet)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	if err := s.registry.KickPlayer(req.RoomID, req.PlayerID, sess.GetID()); err != nil {
		s.sendError(sess, err)
		return
	}
	s.sendJSON(sess, network.MsgTypeAck, ackResponse{OK: true})
}

func (s *GameServer) handleListRooms(sess *session.Session, packet *network.Packet) {
	var summaries []game.RoomSummary
	for _, room := range s.registry.Rooms() {
		if room.Private {
			continue
		}
		room.Lock()
		summaries = append(summaries, game.NewRoomSummary(room))
		room.Unlock()
	}
	s.sendJSON(sess, network.MsgTypeRoomList, summaries)
}

func (s *GameServer) handlePlayerReady(sess *session.Session, packet *network.Packet, ready bool) {
	req, err := decode[roomPlayerRequest](packet)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	if err := s.registry.SetPlayerReady(req.RoomID, req.PlayerID, sess.GetID(), ready); err != nil {
		s.sendError(sess, err)
		return
	}
	s.sendJSON(sess, network.MsgTypeAck, ackResponse{OK: true})
}

func (s *GameServer) handleGetDifficulty(sess *session.Session, packet *network.Packet) {
	req, err := decode[roomPlayerRequest](packet)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	values, err := s.registry.PlayerDifficulty(req.RoomID, req.PlayerID, sess.GetID())
	if err != nil {
		s.sendError(sess, err)
		return
	}
	s.sendJSON(sess, network.MsgTypeAck, values)
}

func (s *GameServer) handleSetDifficulty(sess *session.Session, packet *network.Packet) {
	req, err := decode[difficultyRequest](packet)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	if err := s.registry.ChangePlayerDifficulty(req.RoomID, req.PlayerID, req.Difficulty, sess.GetID()); err != nil {
		s.sendError(sess, err)
		return
	}
	s.sendJSON(sess, network.MsgTypeAck, ackResponse{OK: true})
}

func (s *GameServer) handleChallengeMode(sess *session.Session, packet *network.Packet) {
	req, err := decode[challengeModeRequest](packet)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	if err := s.registry.ChangeChallengeMode(req.RoomID, req.ShowChallenges, sess.GetID()); err != nil {
		s.sendError(sess, err)
		return
	}
	s.sendJSON(sess, network.MsgTypeAck, ackResponse{OK: true})
}

func (s *GameServer) handleStartGame(sess *session.Session, packet *network.Packet) {
	req, err := decode[roomRequest](packet)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	if err := s.engine.StartGame(req.RoomID, sess.GetID()); err != nil {
		s.sendError(sess, err)
		return
	}
	s.sendJSON(sess, network.MsgTypeGameStarted, ackResponse{OK: true})
}

func (s *GameServer) handleChallengeResponse(sess *session.Session, packet *network.Packet) {
	req, err := decode[challengeResponseRequest](packet)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	drank := req.Action == "drank"
	if err := s.engine.HandleResponse(req.RoomID, req.PlayerID, sess.GetID(), drank); err != nil {
		s.sendError(sess, err)
		return
	}
}

func (s *GameServer) handleChallengeCompleted(sess *session.Session, packet *network.Packet) {
	req, err := decode[challengeCompletedRequest](packet)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	if err := s.engine.CompleteChallenge(req.RoomID, req.PlayerID, sess.GetID(), req.Drunk); err != nil {
		s.sendError(sess, err)
		return
	}
}

func (s *GameServer) handleForceSkip(sess *session.Session, packet *network.Packet) {
	req, err := decode[roomRequest](packet)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	if err := s.engine.ForceSkip(req.RoomID, sess.GetID()); err != nil {
		s.sendError(sess, err)
		return
	}
}

func (s *GameServer) handleEndGame(sess *session.Session, packet *network.Packet) {
	req, err := decode[roomRequest](packet)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	if err := s.engine.EndGame(req.RoomID, sess.GetID()); err != nil {
		s.sendError(sess, err)
		return
	}
	s.sendJSON(sess, network.MsgTypeAck, ackResponse{OK: true})
}

func (s *GameServer) handleRestoreSession(sess *session.Session, packet *network.Packet) {
	req, err := decode[roomPlayerRequest](packet)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	result, err := s.restorer.Restore(req.RoomID, req.PlayerID, sess.GetID())
	if err != nil {
		s.sendError(sess, err)
		return
	}

	sess.BindPlayer(req.PlayerID, req.RoomID)
	s.sendJSON(sess, network.MsgTypeSessionRestore, result)
}
