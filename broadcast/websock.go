package broadcast

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

// ErrSockCongestion indicates too many waiters on the socket for a given
// operation — the peer is not draining fast enough.
var ErrSockCongestion = errors.New("broadcast: socket operation failed due to congestion")

const (
	readDeadline  = time.Second
	writeDeadline = time.Second
)

// websock serializes reads and writes to a single websocket connection,
// which gorilla/websocket requires: at most one concurrent reader and one
// concurrent writer.
type websock struct {
	readSem  chan struct{}
	writeSem chan struct{}
	ws       *websocket.Conn
}

func newWebsock(ws *websocket.Conn) *websock {
	return &websock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		ws:       ws,
	}
}

// Conn returns the underlying connection, for non-concurrent setup such as
// registering a pong handler.
func (sock *websock) Conn() *websocket.Conn { return sock.ws }

// Close tears down the connection after no further readers/writers remain.
func (sock *websock) Close() {
	sock.readSem <- struct{}{}
	sock.writeSem <- struct{}{}

	_ = sock.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = sock.ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	sock.ws.Close()
}

// Read serializes read operations on the connection.
func (sock *websock) Read(ctx context.Context, readFn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.readSem <- struct{}{}:
		defer func() { <-sock.readSem }()
		return readFn(sock.ws)
	case <-time.After(readDeadline):
		return ErrSockCongestion
	}
}

// Write serializes write operations on the connection.
func (sock *websock) Write(ctx context.Context, writeFn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.writeSem <- struct{}{}:
		defer func() { <-sock.writeSem }()
		return writeFn(sock.ws)
	case <-time.After(writeDeadline):
		return ErrSockCongestion
	}
}

func isError(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}
