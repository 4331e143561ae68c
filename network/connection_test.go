package network

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func frame(msgID uint16, data []byte) []byte {
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)
	return packet
}

func TestParsePacket(t *testing.T) {
	payload := []byte(`{"roomId":"x"}`)
	packet, err := ParsePacket(frame(MsgTypeJoinRoom, payload))
	if err != nil {
		t.Fatalf("ParsePacket failed: %v", err)
	}
	if packet.MsgID != MsgTypeJoinRoom {
		t.Errorf("expected msg id %d, got %d", MsgTypeJoinRoom, packet.MsgID)
	}
	if !bytes.Equal(packet.Data, payload) {
		t.Errorf("payload mismatch: %q", packet.Data)
	}
}

func TestParsePacketEmptyPayload(t *testing.T) {
	packet, err := ParsePacket(frame(MsgTypeHeartbeat, nil))
	if err != nil {
		t.Fatalf("ParsePacket failed: %v", err)
	}
	if packet.MsgID != MsgTypeHeartbeat || len(packet.Data) != 0 {
		t.Errorf("unexpected packet: %+v", packet)
	}
}

func TestParsePacketTruncated(t *testing.T) {
	cases := [][]byte{
		nil,
		{0x00},
		{0x00, 0x65, 0x00},
		// Header claims 10 payload bytes but carries 2.
		{0x00, 0x65, 0x00, 0x0a, 0x01, 0x02},
	}
	for i, data := range cases {
		if _, err := ParsePacket(data); err != io.ErrShortBuffer {
			t.Errorf("case %d: expected io.ErrShortBuffer, got %v", i, err)
		}
	}
}
