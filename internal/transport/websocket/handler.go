package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iamasit07/connect4-bot/internal/domain"
	"github.com/iamasit07/connect4-bot/internal/service/challenge"
	"github.com/iamasit07/connect4-bot/internal/service/game"
	"github.com/iamasit07/connect4-bot/pkg/uid"
	"github.com/rs/zerolog"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

// playerPrefix namespaces socket identities. Sessions are shared with the
// Discord bot, so a raw client-chosen ID must never match a Discord user ID.
const playerPrefix = "ws:"

func playerID(raw string) string {
	if strings.HasPrefix(raw, playerPrefix) {
		return raw
	}
	return playerPrefix + raw
}

type Handler struct {
	Conns      *ConnectionManager
	Dispatcher *game.Dispatcher
	Challenges *challenge.Service
	Upgrader   websocket.Upgrader
	logger     zerolog.Logger
}

func NewHandler(cm *ConnectionManager, dispatcher *game.Dispatcher, challenges *challenge.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		Conns:      cm,
		Dispatcher: dispatcher,
		Challenges: challenges,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.With().Str("component", "ws").Logger(),
	}
}

// HandleWebSocket upgrades the request and serves the connection until it
// closes.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("upgrade failed")
		return
	}

	h.handleConnection(r.Context(), conn)
}

func (h *Handler) handleConnection(ctx context.Context, conn *websocket.Conn) {
	ctx = context.WithoutCancel(ctx)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	var hello ClientMessage
	if err := conn.ReadJSON(&hello); err != nil {
		h.logger.Debug().Err(err).Msg("read init")
		conn.Close()
		return
	}
	if hello.Type != TypeInit || hello.PlayerID == "" {
		conn.WriteJSON(ServerMessage{Type: TypeError, Message: "first message must be init with a player_id"})
		conn.Close()
		return
	}

	player := game.Player{ID: playerID(hello.PlayerID), Name: hello.Name}
	if player.Name == "" {
		player.Name = strings.TrimPrefix(player.ID, playerPrefix)
	}
	h.Conns.AddConnection(player.ID, conn, player.Name)
	log := h.logger.With().Str("player", player.ID).Logger()
	log.Info().Msg("connection initialized")

	done := make(chan struct{})
	go h.keepAlive(player.ID, conn, done)

	defer func() {
		close(done)
		// only the current socket may abandon, a reconnect keeps the game
		if h.Conns.RemoveConnectionIfMatching(player.ID, conn) {
			h.abandon(ctx, player)
		}
		log.Info().Msg("connection closed")
	}()

	h.Conns.SendMessage(player.ID, ServerMessage{Type: TypeReady, PlayerID: player.ID})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("unexpected close")
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(player.ID, "invalid message format")
			continue
		}
		h.processMessage(ctx, player, msg)
	}
}

func (h *Handler) keepAlive(playerID string, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := h.Conns.ping(playerID, conn); err != nil {
				return
			}
		}
	}
}

func (h *Handler) processMessage(ctx context.Context, player game.Player, msg ClientMessage) {
	switch msg.Type {
	case TypeChallenge:
		h.challenge(ctx, player, msg)
	case TypeRespondChallenge:
		h.respond(ctx, player, msg)
	case TypeMakeMove:
		h.move(ctx, player, msg.Column)
	case TypeAbandon:
		if !h.abandon(ctx, player) {
			h.sendError(player.ID, "you are not in a game")
		}
	default:
		h.sendError(player.ID, "unknown message type")
	}
}

func (h *Handler) challenge(ctx context.Context, player game.Player, msg ClientMessage) {
	opponentID := playerID(msg.Opponent)
	opponentName, online := h.Conns.Name(opponentID)
	if msg.Opponent == "" || !online {
		h.sendError(player.ID, "opponent is not connected")
		return
	}
	gameName := msg.Game
	if gameName == "" {
		gameName = "connect4"
	}

	opponent := game.Player{ID: opponentID, Name: opponentName}
	c, err := h.Challenges.Issue(ctx, uid.NewChallengeID(), gameName, player, opponent)
	if err != nil {
		h.sendError(player.ID, challengeErrorText(err))
		return
	}

	h.Conns.SendMessage(opponent.ID, ServerMessage{
		Type:        TypeChallengeReceived,
		ChallengeID: c.ID,
		From:        &c.Challenger,
		Game:        c.Game,
	})
}

func (h *Handler) respond(ctx context.Context, player game.Player, msg ClientMessage) {
	result, c, err := h.Challenges.Respond(ctx, msg.ChallengeID, player.ID, msg.Accept)
	if err != nil {
		if errors.Is(err, challenge.ErrChallengeNotFound) {
			h.sendError(player.ID, "challenge not found or expired")
			return
		}
		h.logger.Error().Err(err).Str("challenge", msg.ChallengeID).Msg("respond to challenge")
		h.sendError(player.ID, "could not answer challenge")
		return
	}

	switch result {
	case challenge.ResultIgnored:
		h.sendError(player.ID, "you cannot answer this challenge")
	case challenge.ResultDeclined:
		declined := ServerMessage{Type: TypeChallengeDeclined, ChallengeID: c.ID, Game: c.Game}
		h.Conns.SendMessage(c.Challenger.ID, declined)
		h.Conns.SendMessage(c.Challenged.ID, declined)
	case challenge.ResultAccepted:
		out, err := h.Dispatcher.Dispatch(ctx, game.StartEvent{
			SessionID:  uid.NewGameID(),
			Game:       c.Game,
			Challenger: c.Challenger,
			Challenged: c.Challenged,
		})
		if err != nil {
			msg := challengeErrorText(err)
			h.sendError(c.Challenger.ID, msg)
			h.sendError(c.Challenged.ID, msg)
			return
		}
		snap := out.Session
		for i, p := range snap.Players {
			m := h.sessionMessage(TypeGameStart, snap)
			m.YourPlayer = i + 1
			h.Conns.SendMessage(p.ID, m)
		}
	}
}

func (h *Handler) move(ctx context.Context, player game.Player, column int) {
	session, exists := h.Dispatcher.Manager().GetByPlayer(player.ID)
	if !exists {
		h.sendError(player.ID, "you are not in a game")
		return
	}

	out, err := h.Dispatcher.Dispatch(ctx, game.MoveEvent{
		SessionID: session.ID,
		PlayerID:  player.ID,
		Move:      column - 1,
	})
	if err != nil {
		h.sendError(player.ID, "game not found")
		return
	}

	switch out.Reason {
	case game.ReasonNotYourTurn:
		h.sendError(player.ID, "not your turn")
		return
	case game.ReasonIllegalMove:
		h.sendError(player.ID, "illegal move")
		return
	case game.ReasonGameOver, game.ReasonNotAPlayer:
		h.sendError(player.ID, "game is over")
		return
	}

	moved := h.sessionMessage(TypeMoveMade, out.Session)
	moved.Column = column
	moved.PlayerID = player.ID
	h.broadcast(out.Session, moved)
	if out.Session.Finished() {
		h.broadcast(out.Session, h.sessionMessage(TypeGameOver, out.Session))
	}
}

// abandon ends the player's live game, if any, in the opponent's favour.
func (h *Handler) abandon(ctx context.Context, player game.Player) bool {
	session, exists := h.Dispatcher.Manager().GetByPlayer(player.ID)
	if !exists {
		return false
	}

	out, err := h.Dispatcher.Dispatch(ctx, game.AbandonEvent{SessionID: session.ID, PlayerID: player.ID})
	if err != nil || out.Kind != game.OutcomeAbandoned {
		return false
	}
	h.broadcast(out.Session, h.sessionMessage(TypeGameOver, out.Session))
	return true
}

func (h *Handler) sessionMessage(kind string, snap game.Snapshot) ServerMessage {
	m := ServerMessage{
		Type:     kind,
		GameID:   snap.ID,
		Game:     snap.GameName,
		Board:    snap.Board.Ints(),
		Rendered: snap.Render(domain.TextSymbols),
		State:    snap.State,
		Reason:   snap.Reason,
	}
	if snap.Finished() {
		if winner, ok := snap.WinningPlayer(); ok {
			m.Winner = &winner
		}
	} else {
		next := snap.CurrentPlayer()
		m.NextPlayer = &next
	}
	return m
}

func (h *Handler) broadcast(snap game.Snapshot, m ServerMessage) {
	for _, p := range snap.Players {
		if err := h.Conns.SendMessage(p.ID, m); err != nil {
			h.logger.Debug().Err(err).Str("player", p.ID).Msg("send failed")
		}
	}
}

func (h *Handler) sendError(playerID, text string) {
	h.Conns.SendMessage(playerID, ServerMessage{Type: TypeError, Message: text})
}

func challengeErrorText(err error) string {
	switch {
	case errors.Is(err, game.ErrSelfChallenge):
		return "you cannot challenge yourself"
	case errors.Is(err, game.ErrPlayerBusy):
		return "a player is already in a game"
	case errors.Is(err, domain.ErrUnknownGame):
		return "unknown game"
	default:
		return "could not start game"
	}
}
