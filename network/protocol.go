package network

const (
	MsgTypeHeartbeat = 1

	// 房间管理
	MsgTypeCreateRoom    = 101
	MsgTypeJoinRoom      = 102
	MsgTypeLeaveRoom     = 103
	MsgTypeKickPlayer    = 104
	MsgTypeListRooms     = 105
	MsgTypePlayerReady   = 106
	MsgTypePlayerUnready = 107
	MsgTypeGetDifficulty = 108
	MsgTypeSetDifficulty = 109
	MsgTypeChallengeMode = 110

	// 游戏流程
	MsgTypeStartGame          = 201
	MsgTypeChallengeResponse  = 202
	MsgTypeForceSkip          = 203
	MsgTypeEndGame            = 204
	MsgTypeChallengeCompleted = 205

	// 服务端推送
	MsgTypeRoomCreated    = 301
	MsgTypeRoomJoined     = 302
	MsgTypeRoomList       = 303
	MsgTypeGameStarted    = 304
	MsgTypeChallenge      = 305
	MsgTypeSessionRestore = 306
	MsgTypeAck            = 307

	MsgTypeRestoreSession = 401

	MsgTypeError = 500
)
