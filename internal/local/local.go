// Package local runs a hot-seat game in the terminal through the same
// dispatcher the chat transports use.
package local

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iamasit07/connect4-bot/internal/domain"
	"github.com/iamasit07/connect4-bot/internal/service/game"
	"github.com/iamasit07/connect4-bot/pkg/uid"
)

// ErrQuit is returned when the input ends or a player quits mid-game.
var ErrQuit = errors.New("game abandoned")

type Game struct {
	dispatcher *game.Dispatcher
	in         *bufio.Scanner
	out        io.Writer
	symbols    domain.Symbols
	title      lipgloss.Style
}

func New(dispatcher *game.Dispatcher, in io.Reader, out io.Writer) *Game {
	r := lipgloss.NewRenderer(out)
	return &Game{
		dispatcher: dispatcher,
		in:         bufio.NewScanner(in),
		out:        out,
		symbols: domain.Symbols{
			Empty:   r.NewStyle().Faint(true).Render(" ."),
			Player1: r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")).Render(" X"),
			Player2: r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")).Render(" O"),
		},
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
	}
}

// Play runs one game between p1 (challenger) and p2 until it ends.
func (g *Game) Play(ctx context.Context, gameName string, p1, p2 game.Player) (game.Snapshot, error) {
	out, err := g.dispatcher.Dispatch(ctx, game.StartEvent{
		SessionID:  uid.NewGameID(),
		Game:       gameName,
		Challenger: p1,
		Challenged: p2,
	})
	if err != nil {
		return game.Snapshot{}, err
	}
	snap := out.Session
	fmt.Fprintln(g.out, g.title.Render(fmt.Sprintf("%s: %s (X) vs %s (O)", snap.Game.Title(), p1.Name, p2.Name)))

	for !snap.Finished() {
		if err := ctx.Err(); err != nil {
			return g.quit(ctx, snap)
		}

		current := snap.CurrentPlayer()
		fmt.Fprint(g.out, g.board(snap))
		fmt.Fprintf(g.out, "%s, pick a move (1-%d) or q to quit: ", current.Name, snap.Game.MoveCount())

		if !g.in.Scan() {
			fmt.Fprintln(g.out)
			return g.quit(ctx, snap)
		}
		line := strings.TrimSpace(g.in.Text())
		if strings.EqualFold(line, "q") {
			return g.quit(ctx, snap)
		}

		n, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(g.out, "Please enter a number.")
			continue
		}

		res, err := g.dispatcher.Dispatch(ctx, game.MoveEvent{SessionID: snap.ID, PlayerID: current.ID, Move: n - 1})
		if err != nil {
			return snap, err
		}
		if res.Kind == game.OutcomeRejected {
			fmt.Fprintln(g.out, "That move is not possible, try again.")
		}
		snap = res.Session
	}

	fmt.Fprint(g.out, g.board(snap))
	fmt.Fprintln(g.out, g.title.Render(result(snap)))
	return snap, nil
}

func (g *Game) quit(ctx context.Context, snap game.Snapshot) (game.Snapshot, error) {
	res, err := g.dispatcher.Dispatch(context.WithoutCancel(ctx), game.AbandonEvent{SessionID: snap.ID, PlayerID: snap.CurrentPlayer().ID})
	if err != nil {
		return snap, err
	}
	fmt.Fprintln(g.out, result(res.Session))
	return res.Session, ErrQuit
}

func (g *Game) board(snap game.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(snap.Render(g.symbols))
	if snap.GameName == "connect4" {
		for i := 1; i <= snap.Game.MoveCount(); i++ {
			fmt.Fprintf(&sb, " %d", i)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func result(snap game.Snapshot) string {
	winner, ok := snap.WinningPlayer()
	switch {
	case !ok:
		return "The board is full. It's a draw!"
	case snap.State == game.StateAbandoned:
		return fmt.Sprintf("%s quit. %s wins!", snap.Player(snap.Winner.Opponent()).Name, winner.Name)
	default:
		return fmt.Sprintf("%s wins!", winner.Name)
	}
}
