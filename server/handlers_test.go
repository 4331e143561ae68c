package server

import (
	"encoding/json"
	"io"
	"net"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JosMartins/Drinkster/game"
	"github.com/JosMartins/Drinkster/logger"
	"github.com/JosMartins/Drinkster/models"
	"github.com/JosMartins/Drinkster/monitor"
	"github.com/JosMartins/Drinkster/network"
	"github.com/JosMartins/Drinkster/session"
)

func TestMain(m *testing.M) {
	logger.InitDevelopment()
	os.Exit(m.Run())
}

type mockConn struct {
	sent []*network.Packet
}

func (c *mockConn) Send(msgID uint16, data []byte) error {
	c.sent = append(c.sent, &network.Packet{MsgID: msgID, Data: data})
	return nil
}

func (c *mockConn) ReadPacket() (*network.Packet, error) { return nil, io.EOF }
func (c *mockConn) Close() error                         { return nil }
func (c *mockConn) RemoteAddr() net.Addr                 { return nil }

// Prometheus collectors register globally, so the test server shares one
// monitor instance.
var testMonitor = monitor.NewMonitor("drinkster_server_test")

func newTestServer() *GameServer {
	return &GameServer{
		registry:      game.NewRegistry(),
		sessions:      session.NewManager(),
		monitor:       testMonitor,
		rememberCount: 10,
		shutdownChan:  make(chan struct{}),
	}
}

func newTestSession(conn *mockConn) *session.Session {
	return session.NewSession(uuid.New().String(), conn)
}

func packetFor(t *testing.T, msgID uint16, payload any) *network.Packet {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return &network.Packet{MsgID: msgID, Data: data}
}

func TestCreateRoomDefaultsRememberCount(t *testing.T) {
	s := newTestServer()
	conn := &mockConn{}
	sess := newTestSession(conn)

	// No rememberCount in the payload.
	req := createRoomRequest{
		Name:           "friday night",
		Mode:           models.ModeNormal,
		ShowChallenges: true,
		Player:         playerPayload{Name: "host", Sex: models.SexAll},
	}
	s.handleCreateRoom(sess, packetFor(t, network.MsgTypeCreateRoom, req))

	require.Len(t, conn.sent, 1)
	assert.Equal(t, uint16(network.MsgTypeRoomCreated), conn.sent[0].MsgID)

	var resp roomCreatedResponse
	require.NoError(t, json.Unmarshal(conn.sent[0].Data, &resp))
	room, err := s.registry.Room(resp.RoomID)
	require.NoError(t, err)
	assert.Equal(t, 10, room.RememberedChallenges)
	assert.Equal(t, 10, room.History().Capacity())
}

func TestCreateRoomExplicitRememberCountKept(t *testing.T) {
	s := newTestServer()
	conn := &mockConn{}
	sess := newTestSession(conn)

	req := createRoomRequest{
		Name:          "friday night",
		Mode:          models.ModeNormal,
		RememberCount: 3,
		Player:        playerPayload{Name: "host", Sex: models.SexAll},
	}
	s.handleCreateRoom(sess, packetFor(t, network.MsgTypeCreateRoom, req))

	require.Len(t, conn.sent, 1)
	var resp roomCreatedResponse
	require.NoError(t, json.Unmarshal(conn.sent[0].Data, &resp))
	room, err := s.registry.Room(resp.RoomID)
	require.NoError(t, err)
	assert.Equal(t, 3, room.RememberedChallenges)
}

func TestCreateRoomNegativeRememberCountRejected(t *testing.T) {
	s := newTestServer()
	conn := &mockConn{}
	sess := newTestSession(conn)

	req := createRoomRequest{
		Name:          "friday night",
		Mode:          models.ModeNormal,
		RememberCount: -1,
		Player:        playerPayload{Name: "host", Sex: models.SexAll},
	}
	s.handleCreateRoom(sess, packetFor(t, network.MsgTypeCreateRoom, req))

	require.Len(t, conn.sent, 1)
	assert.Equal(t, uint16(network.MsgTypeError), conn.sent[0].MsgID)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(conn.sent[0].Data, &resp))
	assert.Equal(t, "VALIDATION", resp.Code)
	assert.Equal(t, 0, s.registry.RoomCount())
}
