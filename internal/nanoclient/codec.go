package nanoclient

import (
	"bytes"
	"errors"
	"fmt"
)

// The server speaks the pomelo wire format: packets framed as a 1-byte
// type plus a 3-byte big-endian length, with request/response messages
// inside Data packets.

type packetType byte

const (
	packetHandshake    packetType = 1
	packetHandshakeAck packetType = 2
	packetHeartbeat    packetType = 3
	packetData         packetType = 4
	packetKick         packetType = 5
)

const packetHeadLength = 4

var (
	errWrongPacketType  = errors.New("wrong packet type")
	errTruncatedMessage = errors.New("truncated message")
)

type packet struct {
	typ  packetType
	data []byte
}

func encodePacket(typ packetType, data []byte) []byte {
	buf := make([]byte, packetHeadLength+len(data))
	buf[0] = byte(typ)
	buf[1] = byte(len(data) >> 16)
	buf[2] = byte(len(data) >> 8)
	buf[3] = byte(len(data))
	copy(buf[packetHeadLength:], data)
	return buf
}

// packetDecoder reassembles packets from the byte stream. Websocket
// frame boundaries carry no meaning, a single read may hold part of a
// packet or several packets.
type packetDecoder struct {
	buf bytes.Buffer
}

func (d *packetDecoder) feed(p []byte) ([]packet, error) {
	d.buf.Write(p)
	var pkts []packet
	for {
		b := d.buf.Bytes()
		if len(b) < packetHeadLength {
			return pkts, nil
		}
		typ := packetType(b[0])
		if typ < packetHandshake || typ > packetKick {
			return pkts, fmt.Errorf("%w: %d", errWrongPacketType, typ)
		}
		size := int(b[1])<<16 | int(b[2])<<8 | int(b[3])
		if len(b) < packetHeadLength+size {
			return pkts, nil
		}
		data := make([]byte, size)
		copy(data, b[packetHeadLength:packetHeadLength+size])
		pkts = append(pkts, packet{typ: typ, data: data})
		d.buf.Next(packetHeadLength + size)
	}
}

type messageType byte

const (
	msgRequest  messageType = 0
	msgNotify   messageType = 1
	msgResponse messageType = 2
	msgPush     messageType = 3
)

const (
	msgRouteCompressMask = 0x01
	msgTypeMask          = 0x07
)

type message struct {
	typ   messageType
	id    uint64
	route string
	data  []byte
}

func (t messageType) hasID() bool {
	return t == msgRequest || t == msgResponse
}

func (t messageType) hasRoute() bool {
	return t == msgRequest || t == msgNotify || t == msgPush
}

func encodeMessage(m message) ([]byte, error) {
	if len(m.route) > 255 {
		return nil, fmt.Errorf("route too long: %q", m.route)
	}
	buf := []byte{byte(m.typ) << 1}
	if m.typ.hasID() {
		// base-128 varint, low group first, high bit marks continuation
		id := m.id
		for {
			b := byte(id % 128)
			id >>= 7
			if id != 0 {
				buf = append(buf, b+128)
			} else {
				buf = append(buf, b)
				break
			}
		}
	}
	if m.typ.hasRoute() {
		buf = append(buf, byte(len(m.route)))
		buf = append(buf, m.route...)
	}
	return append(buf, m.data...), nil
}

func decodeMessage(data []byte) (message, error) {
	var m message
	if len(data) == 0 {
		return m, errTruncatedMessage
	}
	flag := data[0]
	m.typ = messageType(flag >> 1 & msgTypeMask)
	offset := 1

	if m.typ.hasID() {
		var shift uint
		for {
			if offset >= len(data) {
				return m, errTruncatedMessage
			}
			b := data[offset]
			offset++
			m.id += uint64(b&0x7f) << shift
			shift += 7
			if b < 128 {
				break
			}
		}
	}

	if m.typ.hasRoute() {
		if flag&msgRouteCompressMask != 0 {
			// route dictionaries are negotiated at handshake; this
			// client never requests one, so the server won't compress
			return m, errors.New("unexpected compressed route")
		}
		if offset >= len(data) {
			return m, errTruncatedMessage
		}
		rl := int(data[offset])
		offset++
		if offset+rl > len(data) {
			return m, errTruncatedMessage
		}
		m.route = string(data[offset : offset+rl])
		offset += rl
	}

	m.data = data[offset:]
	return m, nil
}
