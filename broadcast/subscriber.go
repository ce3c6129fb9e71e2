package broadcast

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
	maxMessageSize = 8192

	pingResolution = 2 * time.Second
	pongWait       = pingResolution * 4
)

var upgrader = websocket.Upgrader{}

// ErrPongDeadlineExceeded is returned from a subscriber's pingPong loop when
// the peer stops answering pings — treated as a disconnect.
var ErrPongDeadlineExceeded = errors.New("broadcast: pong deadline exceeded")

// subscriber is one observer connected over a websocket, fed by a bounded
// channel the Hub writes into.
type subscriber struct {
	inbox   chan Event
	ws      *websock
	rootCtx context.Context
}

// upgradeSubscriber upgrades an HTTP request to a websocket and wraps it as
// a subscriber fed by inbox. The Hub owns inbox's lifecycle.
func upgradeSubscriber(w http.ResponseWriter, r *http.Request, inbox chan Event) (*subscriber, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	ws.SetReadLimit(maxMessageSize)
	return &subscriber{inbox: inbox, ws: newWebsock(ws), rootCtx: r.Context()}, nil
}

// Sync runs the subscriber until the client disconnects or an unrecoverable
// error occurs: one goroutine drains inbound control frames (required for
// the pong handler to fire), one runs the ping/pong liveness check, and one
// publishes queued events. All three share a context so any one's exit
// tears down the others.
func (s *subscriber) Sync() error {
	group, ctx := errgroup.WithContext(s.rootCtx)

	group.Go(func() error { return s.readLoop(ctx) })
	group.Go(func() error { return s.pingPong(ctx) })
	group.Go(func() error { return s.publishLoop(ctx) })

	err := group.Wait()
	s.ws.Close()
	return err
}

func (s *subscriber) readLoop(ctx context.Context) error {
	for {
		err := s.ws.Read(ctx, func(ws *websocket.Conn) (readErr error) {
			_, _, readErr = ws.ReadMessage()
			return
		})
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (s *subscriber) pingPong(ctx context.Context) error {
	pong := make(chan struct{})
	defer close(pong)
	s.ws.Conn().SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		case <-ctx.Done():
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
			if err := s.ping(ctx); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (s *subscriber) ping(ctx context.Context) error {
	return s.ws.Write(ctx, func(ws *websocket.Conn) (err error) {
		if err = ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil && isError(err) {
			err = fmt.Errorf("ping failed: %w", err)
		}
		return
	})
}

func (s *subscriber) publishLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-s.inbox:
			if !ok {
				return nil
			}
			err := s.ws.Write(ctx, func(ws *websocket.Conn) (writeErr error) {
				if writeErr = ws.SetWriteDeadline(time.Now().Add(writeWait)); writeErr != nil {
					return fmt.Errorf("set write deadline: %w", writeErr)
				}
				if writeErr = ws.WriteJSON(wireEvent(evt)); writeErr != nil && isError(writeErr) {
					writeErr = fmt.Errorf("publish failed: %w", writeErr)
				}
				return
			})
			if err != nil {
				return err
			}
		}
	}
}

// wireEventType is the JSON shape pushed to observers: {"kind": "...", "payload": ...}.
type wireEventType struct {
	Kind    Kind `json:"kind"`
	Payload any  `json:"payload"`
}

func wireEvent(e Event) wireEventType {
	return wireEventType{Kind: e.Kind, Payload: e.Payload}
}
