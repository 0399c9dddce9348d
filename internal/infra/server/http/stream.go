package httpserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/coachpo/materialcalc/internal/calculator"
	"github.com/coachpo/materialcalc/internal/observability"
	"github.com/coachpo/materialcalc/internal/telemetry"
)

const streamWriteTimeout = 5 * time.Second

// streamFrame is one estimate request on the WebSocket. The caller's id is
// echoed on the reply so responses can be matched out of band.
type streamFrame struct {
	ID string `json:"id"`
	calculator.Input
}

type streamReply struct {
	ID      string              `json:"id"`
	Outcome *calculator.Outcome `json:"outcome,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// stream upgrades to a WebSocket and answers every text frame with an
// estimate until the client closes or the request context ends.
func (s *httpServer) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		s.logger.Error("websocket accept failed", observability.Field{Key: "err", Value: err})
		return
	}
	conn.SetReadLimit(s.maxBodyBytes)

	ctx := r.Context()
	id := requestID(ctx)
	s.logger.Debug("estimate stream opened", observability.Field{Key: "request_id", Value: id})

	if err := s.readLoop(ctx, conn); err != nil {
		s.logger.Error("estimate stream failed",
			observability.Field{Key: "request_id", Value: id},
			observability.Field{Key: "err", Value: err})
		_ = conn.Close(websocket.StatusInternalError, "stream error")
		return
	}
	_ = conn.Close(websocket.StatusNormalClosure, "shutdown")
}

func (s *httpServer) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if status := websocket.CloseStatus(err); status != -1 {
				if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
					return nil
				}
				return fmt.Errorf("read: remote closed with status %d", status)
			}
			return fmt.Errorf("read: %w", err)
		}
		if msgType != websocket.MessageText {
			continue
		}

		reply := s.answer(ctx, data)
		payload, err := encodeJSON(reply)
		if err != nil {
			return err
		}
		writeCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
		err = conn.Write(writeCtx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
	}
}

func (s *httpServer) answer(ctx context.Context, data []byte) streamReply {
	var frame streamFrame
	if err := decodeJSON(bytes.NewReader(data), &frame); err != nil {
		return streamReply{ID: frame.ID, Error: fmt.Sprintf("decode frame: %v", err)}
	}
	if !s.limiter.allow() {
		s.metrics.RecordRateLimited(ctx, streamPath)
		return streamReply{ID: frame.ID, Error: "rate limit exceeded"}
	}
	outcome := s.evaluate(ctx, frame.Input, telemetry.TransportWebSocket)
	return streamReply{ID: frame.ID, Outcome: &outcome}
}
