package rpc

import (
	"net"
	"net/rpc"

	"github.com/JosMartins/Drinkster/game"
	"github.com/JosMartins/Drinkster/logger"
	"github.com/JosMartins/Drinkster/models"
	"github.com/JosMartins/Drinkster/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// OpsService exposes operational queries over net/rpc: live room summaries
// and catalog stats. Methods follow the net/rpc signature rules.
type OpsService struct {
	registry *game.Registry
	catalog  *services.ChallengeService
}

func NewOpsService(registry *game.Registry, catalog *services.ChallengeService) *OpsService {
	return &OpsService{registry: registry, catalog: catalog}
}

type ListRoomsArgs struct {
	// PublicOnly filters out private rooms.
	PublicOnly bool
}

type RoomInfo struct {
	ID      string
	Name    string
	State   string
	Players int
	Round   int
	Private bool
}

type ListRoomsReply struct {
	Rooms []RoomInfo
}

func (o *OpsService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	for _, room := range o.registry.Rooms() {
		if args.PublicOnly && room.Private {
			continue
		}
		room.Lock()
		reply.Rooms = append(reply.Rooms, RoomInfo{
			ID:      room.ID.String(),
			Name:    room.Name,
			State:   string(room.State()),
			Players: room.PlayerCount(),
			Round:   room.Round(),
			Private: room.Private,
		})
		room.Unlock()
	}
	return nil
}

type ChallengeStatsArgs struct{}

type ChallengeStatsReply struct {
	Stats models.ChallengeStats
}

func (o *OpsService) GetChallengeStats(args *ChallengeStatsArgs, reply *ChallengeStatsReply) error {
	reply.Stats = o.catalog.Stats()
	return nil
}
