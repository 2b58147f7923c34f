package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

// ErrSockCongestion indicates too many callers are waiting on the
// underlying websocket connection for a given operation.
var ErrSockCongestion = errors.New("httpserver: websocket operation congested")

const (
	readDeadline  = time.Second
	writeDeadline = time.Second
)

// websock serializes reads and writes against a single *websocket.Conn,
// which permits at most one reader and one writer at a time.
type websock struct {
	readSem  chan struct{}
	writeSem chan struct{}
	conn     *websocket.Conn
}

func newWebsock(conn *websocket.Conn) *websock {
	return &websock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		conn:     conn,
	}
}

func (s *websock) Conn() *websocket.Conn { return s.conn }

func (s *websock) Read(ctx context.Context, fn func(*websocket.Conn) error) error {
	select {
	case s.readSem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.readSem }()
	return fn(s.conn)
}

func (s *websock) Write(ctx context.Context, fn func(*websocket.Conn) error) error {
	select {
	case s.writeSem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.writeSem }()
	return fn(s.conn)
}

func (s *websock) Close() {
	s.readSem <- struct{}{}
	s.writeSem <- struct{}{}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	_ = s.conn.WriteMessage(websocket.CloseMessage, nil)
	_ = s.conn.Close()
}

func isUnexpectedClose(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}
