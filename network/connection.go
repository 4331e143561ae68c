// network/connection.go
package network

import (
	"encoding/binary"
	"io"
	"net"
	"sync"

	"github.com/gorilla/websocket"
)

// Packet is one framed client message.
type Packet struct {
	MsgID uint16
	Data  []byte
}

// Connection abstracts the transport for sessions; tests substitute mocks.
type Connection interface {
	Send(msgID uint16, data []byte) error
	ReadPacket() (*Packet, error)
	Close() error
	RemoteAddr() net.Addr
}

// WSConnection frames packets over a binary websocket. Writes are serialized:
// the engine broadcasts turn notices while the read loop answers requests on
// its own goroutine.
type WSConnection struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{conn: conn}
}

// 封包: 2字节消息ID + 2字节数据长度 + 数据
func (c *WSConnection) Send(msgID uint16, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.conn.WriteMessage(websocket.BinaryMessage, packet)
}

func (c *WSConnection) ReadPacket() (*Packet, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return ParsePacket(data)
}

// ParsePacket decodes one framed message. Truncated frames return
// io.ErrShortBuffer.
func ParsePacket(data []byte) (*Packet, error) {
	if len(data) < 4 {
		return nil, io.ErrShortBuffer
	}

	length := binary.BigEndian.Uint16(data[2:4])
	if len(data) < int(4+length) {
		return nil, io.ErrShortBuffer
	}

	return &Packet{
		MsgID: binary.BigEndian.Uint16(data[0:2]),
		Data:  data[4 : 4+length],
	}, nil
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
