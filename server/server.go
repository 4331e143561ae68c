package server

import (
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/JosMartins/Drinkster/broadcast"
	"github.com/JosMartins/Drinkster/challenge"
	"github.com/JosMartins/Drinkster/config"
	"github.com/JosMartins/Drinkster/game"
	"github.com/JosMartins/Drinkster/logger"
	"github.com/JosMartins/Drinkster/monitor"
	"github.com/JosMartins/Drinkster/network"
	"github.com/JosMartins/Drinkster/persistence"
	drinkster_rpc "github.com/JosMartins/Drinkster/rpc"
	"github.com/JosMartins/Drinkster/services"
	"github.com/JosMartins/Drinkster/session"
	"github.com/JosMartins/Drinkster/timer"
)

type GameServer struct {
	addr          string
	upgrader      websocket.Upgrader
	registry      *game.Registry
	sessions      *session.Manager
	engine        *game.Engine
	restorer      *game.SessionRestorer
	broadcaster   *broadcast.SessionBroadcaster
	catalog       *services.ChallengeService
	scheduler     *timer.Scheduler
	rpcServer     *drinkster_rpc.Server
	monitor       *monitor.Monitor
	rememberCount int
	shutdownChan  chan struct{}
}

func NewGameServer(cfg *config.Config, store persistence.ChallengeStore) *GameServer {
	catalog, err := services.NewChallengeService(store)
	if err != nil {
		logger.Log.Fatalf("Failed to load challenge catalog: %v", err)
	}

	s := &GameServer{
		addr:          cfg.Server.HTTPAddress,
		registry:      game.NewRegistry(),
		sessions:      session.NewManager(),
		catalog:       catalog,
		scheduler:     timer.NewScheduler(),
		monitor:       monitor.NewMonitor("drinkster"),
		rememberCount: cfg.Game.DefaultRememberCount,
		shutdownChan:  make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	s.broadcaster = broadcast.NewSessionBroadcaster(s.sessions)
	s.engine = game.NewEngine(
		s.registry,
		challenge.NewSelector(catalog),
		s.broadcaster,
		s.scheduler,
		cfg.Game.ChallengeTimeout,
		cfg.Game.RedrawsPerTier,
	)
	s.engine.SetMetrics(s.monitor)
	s.restorer = game.NewSessionRestorer(s.registry)

	// 初始化RPC服务器
	rpcServer, err := drinkster_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	rpc.Register(drinkster_rpc.NewOpsService(s.registry, catalog))

	s.monitor.StartServer(cfg.Server.MonitorAddress)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
	s.scheduler.Close()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessions.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessions.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		// Rooms survive a dropped connection; the player reclaims
		// their seat through session restore.
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	s.monitor.IncMessagesReceived()

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.LastActive = time.Now()
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess, packet)
	case network.MsgTypeKickPlayer:
		s.handleKickPlayer(sess, packet)
	case network.MsgTypeListRooms:
		s.handleListRooms(sess, packet)
	case network.MsgTypePlayerReady:
		s.handlePlayerReady(sess, packet, true)
	case network.MsgTypePlayerUnready:
		s.handlePlayerReady(sess, packet, false)
	case network.MsgTypeGetDifficulty:
		s.handleGetDifficulty(sess, packet)
	case network.MsgTypeSetDifficulty:
		s.handleSetDifficulty(sess, packet)
	case network.MsgTypeChallengeMode:
		s.handleChallengeMode(sess, packet)
	case network.MsgTypeStartGame:
		s.handleStartGame(sess, packet)
	case network.MsgTypeChallengeResponse:
		s.handleChallengeResponse(sess, packet)
	case network.MsgTypeChallengeCompleted:
		s.handleChallengeCompleted(sess, packet)
	case network.MsgTypeForceSkip:
		s.handleForceSkip(sess, packet)
	case network.MsgTypeEndGame:
		s.handleEndGame(sess, packet)
	case network.MsgTypeRestoreSession:
		s.handleRestoreSession(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}

	s.monitor.ObserveMessageLatency(time.Since(start))
}
