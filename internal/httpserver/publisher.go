package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait      = 1 * time.Second
	pubResolution  = 100 * time.Millisecond
	pingResolution = 200 * time.Millisecond
	pongWait       = pingResolution * 4
)

var upgrader = websocket.Upgrader{}

// ErrPongDeadlineExceeded reports a client that stopped answering pings.
var ErrPongDeadlineExceeded = errors.New("httpserver: client disconnected, pong deadline exceeded")

// snapshotPublisher pushes race.Snapshot updates to one upgraded websocket
// client, at a capped rate, dropping updates that arrive faster than the
// publish resolution (every update fully describes the race state, so
// skipping one is harmless for this viewer).
type snapshotPublisher struct {
	updates <-chan any
	sock    *websock
	rootCtx context.Context
}

func newSnapshotPublisher(updates <-chan any, w http.ResponseWriter, r *http.Request) (*snapshotPublisher, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, err
	}
	return &snapshotPublisher{
		updates: updates,
		sock:    newWebsock(conn),
		rootCtx: r.Context(),
	}, nil
}

// sync runs read, ping/pong liveness, and publish loops concurrently until
// the client disconnects or the request context ends.
func (p *snapshotPublisher) sync() error {
	group, ctx := errgroup.WithContext(p.rootCtx)
	group.Go(func() error { return p.drainReads(ctx) })
	group.Go(func() error { return p.pingPong(ctx) })
	group.Go(func() error { return p.publish(ctx) })
	err := group.Wait()
	p.sock.Close()
	return err
}

func (p *snapshotPublisher) drainReads(ctx context.Context) error {
	for {
		err := p.sock.Read(ctx, func(c *websocket.Conn) (readErr error) {
			_, _, readErr = c.ReadMessage()
			return
		})
		if err != nil {
			return err
		}
	}
}

func (p *snapshotPublisher) pingPong(ctx context.Context) error {
	pong := make(chan struct{})
	defer close(pong)
	p.sock.Conn().SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			if err := p.ping(ctx); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (p *snapshotPublisher) ping(ctx context.Context) error {
	return p.sock.Write(ctx, func(c *websocket.Conn) (err error) {
		if err = c.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil && isUnexpectedClose(err) {
			err = fmt.Errorf("ping failed: %w", err)
		}
		return
	})
}

func (p *snapshotPublisher) publish(ctx context.Context) error {
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-p.updates:
			if !ok {
				return nil
			}
			if time.Since(last) < pubResolution {
				continue
			}
			last = time.Now()
			err := p.sock.Write(ctx, func(c *websocket.Conn) (err error) {
				if err = c.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					return fmt.Errorf("set write deadline: %w", err)
				}
				if err = c.WriteJSON(snap); err != nil && isUnexpectedClose(err) {
					err = fmt.Errorf("publish failed: %w", err)
				}
				return
			})
			if err != nil {
				return err
			}
		}
	}
}
