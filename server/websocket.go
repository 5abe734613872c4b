package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/xhad/polisum/internal/models"
	"github.com/xhad/polisum/internal/types"
	"github.com/xhad/polisum/pkg/processor"
)

func (s *Server) upgrader() websocket.Upgrader {
	allowAll := slices.Contains(s.config.AllowedOrigins, "*")
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowAll || origin == "" || slices.Contains(s.config.AllowedOrigins, origin)
		},
	}
}

// wsConn serializes writes; gorilla connections allow one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(ctx context.Context, msg types.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("type", msg.Type).Msg("Error sending message")
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	ws := &wsConn{conn: conn}
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Ctx(ctx).Debug().Err(err).Msg("Error reading message")
			}
			return
		}

		var msg types.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			ws.send(ctx, types.Message{Type: types.MessageError, Content: "Error: " + err.Error()})
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleMessage(ctx, ws, msg)
		}()
	}
}

func (s *Server) handleMessage(ctx context.Context, ws *wsConn, msg types.Message) {
	defer func() {
		if p := recover(); p != nil {
			ws.send(ctx, types.Message{Type: types.MessageError, Content: fmt.Sprintf("Error: %v", p)})
		}
	}()

	switch msg.Type {
	case types.MessageSummarize:
		text := processor.CleanText(msg.Content)
		if text == "" {
			ws.send(ctx, types.Message{Type: types.MessageError, Content: msgNoText})
			return
		}

		summary, err := s.summarizer.SummarizeCleaned(ctx, text, func(p models.Progress) {
			ws.send(ctx, types.Message{
				Type:    types.MessageProgress,
				Content: fmt.Sprintf("Processed chunk %d of %d", p.Index, p.Total),
				Data:    p,
			})
		})
		if err != nil {
			ws.send(ctx, types.Message{Type: types.MessageError, Content: "Error: " + err.Error()})
			return
		}

		s.record(ctx, models.KindSummary, "", summary)
		ws.send(ctx, types.Message{Type: types.MessageSummary, Content: summary})

	case types.MessageGenerate:
		scenario := strings.TrimSpace(msg.Scenario)
		switch {
		case strings.TrimSpace(msg.Content) == "":
			ws.send(ctx, types.Message{Type: types.MessageError, Content: msgMissingSummary})
			return
		case scenario == "":
			ws.send(ctx, types.Message{Type: types.MessageError, Content: msgMissingScenario})
			return
		}

		draft, err := s.drafter.Draft(ctx, msg.Content, scenario)
		if err != nil {
			ws.send(ctx, types.Message{Type: types.MessageError, Content: "Error: " + err.Error()})
			return
		}

		s.record(ctx, models.KindDraft, scenario, draft)
		ws.send(ctx, types.Message{Type: types.MessageDraft, Content: draft, Scenario: scenario})

	default:
		ws.send(ctx, types.Message{Type: types.MessageError, Content: fmt.Sprintf("Error: unknown message type %q", msg.Type)})
	}
}
