package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	// Time allowed to write a reply to the peer.
	writeWait = 10 * time.Second

	// Time a connection may sit idle between frames.
	idleTimeout = 5 * time.Minute
)

// wsReply wraps a detection or an error for one analysed frame.
type wsReply struct {
	Type      string      `json:"type"`
	Detection interface{} `json:"detection,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// handleWebSocket analyses every text frame it receives and answers with a
// JSON detection. Frames are {"text": ..., "html": bool} objects or plain
// text.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.config.AllowedOrigins,
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "WebSocket upgrade failed",
			"origin", r.Header.Get("Origin"),
			"client_ip", getClientIP(r))
		return
	}
	defer conn.CloseNow()

	conn.SetReadLimit(s.config.MaxBodyBytes)
	ctx := r.Context()
	s.logger.Debug(ctx, "WebSocket client connected", "client_ip", getClientIP(r))

	for {
		reply, err := s.readFrame(ctx, conn)
		if err != nil {
			s.closeWithReason(ctx, conn, err)
			return
		}

		writeCtx, cancel := context.WithTimeout(ctx, writeWait)
		err = wsjson.Write(writeCtx, conn, reply)
		cancel()
		if err != nil {
			s.logger.Debug(ctx, "WebSocket write failed", "error", err.Error())
			return
		}
	}
}

// readFrame waits for the next frame and analyses it. Malformed frames
// produce an error reply rather than closing the connection.
func (s *Server) readFrame(ctx context.Context, conn *websocket.Conn) (wsReply, error) {
	readCtx, cancel := context.WithTimeout(ctx, idleTimeout)
	defer cancel()

	typ, data, err := conn.Read(readCtx)
	if err != nil {
		return wsReply{}, err
	}
	if typ != websocket.MessageText {
		return wsReply{Type: "error", Error: "binary frames are not supported"}, nil
	}

	req := AnalyzeRequest{Text: string(data)}
	if len(data) > 0 && data[0] == '{' {
		if err := decodeFrame(data, &req); err != nil {
			return wsReply{Type: "error", Error: err.Error()}, nil
		}
	}

	detection, err := s.analyze(req)
	if err != nil {
		return wsReply{Type: "error", Error: err.Error()}, nil
	}
	return wsReply{Type: "detection", Detection: detection}, nil
}

func (s *Server) closeWithReason(ctx context.Context, conn *websocket.Conn, err error) {
	switch {
	case websocket.CloseStatus(err) != -1:
		s.logger.Debug(ctx, "WebSocket client disconnected", "status", websocket.CloseStatus(err).String())
	case ctx.Err() != nil:
		conn.Close(websocket.StatusGoingAway, "server shutting down")
	case stderrors.Is(err, context.DeadlineExceeded):
		s.logger.Debug(ctx, "WebSocket client idle, closing")
	default:
		s.logger.Debug(ctx, "WebSocket read failed", "error", err.Error())
	}
}

func decodeFrame(data []byte, req *AnalyzeRequest) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return fmt.Errorf("invalid frame: %w", err)
	}
	return nil
}
