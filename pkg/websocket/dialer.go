package websocket

import (
	"context"
	"crypto/tls"
	"errors"
	"net/url"
	"time"

	gorilla "github.com/gorilla/websocket"
)

var (
	errFrameTooLarge   = errors.New("frame exceeds buffer")
	errHandshakeFailed = errors.New("websocket: handshake failed")
)

const (
	DefaultDialerTimeout   = 10 * time.Second
	DefaultDialerKeepAlive = 30 * time.Second
)

// dialer builds one venue channel's websocket endpoint and hands out
// *gorilla/websocket.Conn connections wrapped to satisfy Conn.
type dialer struct {
	URL         string
	TLSConfig   *tls.Config
	DialTimeout time.Duration
}

// NewDialer builds a Dialer for wss://host:port/path. ctx is accepted for
// symmetry with Dial's signature and is not retained; each Dial call gets
// its own deadline from the context it is given.
func NewDialer(ctx context.Context, host string, port string, path string) Dialer {
	u := url.URL{Scheme: "wss", Host: host, Path: path}
	if port != "" && port != "443" {
		u.Host = host + ":" + port
	}
	return &dialer{
		URL:         u.String(),
		TLSConfig:   &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12},
		DialTimeout: DefaultDialerTimeout,
	}
}

func (d *dialer) Dial(ctx context.Context) (Conn, error) {
	gd := gorilla.Dialer{
		TLSClientConfig:  d.TLSConfig,
		HandshakeTimeout: d.DialTimeout,
	}
	conn, resp, err := gd.DialContext(ctx, d.URL, nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.StatusCode != 101 {
		_ = conn.Close()
		return nil, errHandshakeFailed
	}
	return &wsConn{conn: conn}, nil
}

// wsConn wraps *gorilla/websocket.Conn to satisfy Conn. gorilla delivers
// whole messages per ReadMessage call, so Read surfaces errFrameTooLarge
// rather than the partial-frame stashing a byte-stream reader would need.
type wsConn struct {
	conn *gorilla.Conn
}

func (c *wsConn) Read(ctx context.Context, dst []byte) (int, MessageType, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(deadline)
	} else {
		_ = c.conn.SetReadDeadline(time.Time{})
	}
	opcode, payload, err := c.conn.ReadMessage()
	if err != nil {
		return 0, 0, err
	}
	msgType := opcodeToMessageType(opcode)
	if msgType == 0 {
		return 0, 0, nil
	}
	if len(payload) > len(dst) {
		return 0, 0, errFrameTooLarge
	}
	n := copy(dst, payload)
	return n, msgType, nil
}

func (c *wsConn) Write(ctx context.Context, msgType MessageType, payload []byte) error {
	opcode := messageTypeToOpcode(msgType)
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
	} else {
		_ = c.conn.SetWriteDeadline(time.Time{})
	}
	return c.conn.WriteMessage(opcode, payload)
}

func (c *wsConn) Close(code CloseCode, reason string) error {
	deadline := time.Now().Add(time.Second)
	msg := gorilla.FormatCloseMessage(int(code), reason)
	_ = c.conn.WriteControl(gorilla.CloseMessage, msg, deadline)
	return c.conn.Close()
}

func messageTypeToOpcode(msgType MessageType) int {
	switch msgType {
	case MessageText:
		return gorilla.TextMessage
	case MessageBinary:
		return gorilla.BinaryMessage
	case MessagePing:
		return gorilla.PingMessage
	case MessagePong:
		return gorilla.PongMessage
	case MessageClose:
		return gorilla.CloseMessage
	default:
		return gorilla.TextMessage
	}
}

func opcodeToMessageType(opcode int) MessageType {
	switch opcode {
	case gorilla.TextMessage:
		return MessageText
	case gorilla.BinaryMessage:
		return MessageBinary
	case gorilla.PingMessage:
		return MessagePing
	case gorilla.PongMessage:
		return MessagePong
	case gorilla.CloseMessage:
		return MessageClose
	default:
		return 0
	}
}
