package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/vancomm/minesweeper-classic/internal/commands"
	"github.com/vancomm/minesweeper-classic/internal/session"
)

type wsReply struct {
	*GameSessionDTO
	Error string `json:"error,omitempty"`
}

// play runs one message worth of commands against the session. Bad input
// is reported back to the client instead of closing the connection.
func (g *GameHandler) play(ctx context.Context, s *session.Session, text string) wsReply {
	var reply wsReply

	cmds, err := commands.ParseBatch(text)
	if err != nil {
		reply.Error = err.Error()
	}

	s.Lock()
	s.Touch()
	if err == nil {
		if _, err := commands.Run(s, cmds); err != nil {
			reply.Error = err.Error()
		}
	}
	reply.GameSessionDTO = NewGameSessionDTO(s)
	record := claimRecord(s)
	s.Unlock()

	g.saveRecord(ctx, record)
	return reply
}

func (g *GameHandler) wsRunGameLoop(ctx context.Context, conn *websocket.Conn, s *session.Session) error {
	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			return nil
		}

		reply := g.play(ctx, s, string(buf))
		if reply.Error != "" {
			g.logger.Debug("ws command rejected",
				slog.String("session", s.ID), slog.String("error", reply.Error))
		}

		if err := conn.WriteJSON(reply); err != nil {
			return err
		}
	}
}

func (g *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	s, ok := g.lookupOwned(w, r)
	if !ok {
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil) // headers sent here
	if err != nil {
		g.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	g.logger.Debug("established WS connection", slog.String("session", s.ID))

	err = g.wsRunGameLoop(r.Context(), conn, s)
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		g.logger.Warn("error in ws loop", slog.Any("error", err))
	}
}
