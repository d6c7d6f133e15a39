package discord

import (
	"fmt"
	"strings"

	"github.com/iamasit07/connect4-bot/internal/domain"
	"github.com/iamasit07/connect4-bot/internal/service/game"
)

const (
	emojiAccept  = "✅"
	emojiDecline = "❎"

	keycapSuffix    = "\u20E3"
	variationSuffix = "\uFE0F"
)

// keycap returns the keycap emoji for n in 1..9.
func keycap(n int) string {
	return string(rune('0'+n)) + keycapSuffix
}

// keycapNumber parses a keycap emoji into 1..9.
func keycapNumber(emoji string) (int, bool) {
	emoji = strings.Replace(emoji, variationSuffix, "", 1)
	if !strings.HasSuffix(emoji, keycapSuffix) {
		return 0, false
	}
	digit := strings.TrimSuffix(emoji, keycapSuffix)
	if len(digit) != 1 || digit[0] < '1' || digit[0] > '9' {
		return 0, false
	}
	return int(digit[0] - '0'), true
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

// parseMention extracts the user ID from <@id> or <@!id>.
func parseMention(s string) (string, bool) {
	if !strings.HasPrefix(s, "<@") || !strings.HasSuffix(s, ">") {
		return "", false
	}
	id := strings.TrimPrefix(s[2:len(s)-1], "!")
	if id == "" {
		return "", false
	}
	return id, true
}

func challengeMessage(challenger, challenged game.Player, gameName string) string {
	return fmt.Sprintf("%s is challenging %s. Click %s to accept and %s to decline. Game: %s",
		mention(challenger.ID), mention(challenged.ID), emojiAccept, emojiDecline, gameName)
}

func instructionsMessage(snap game.Snapshot) string {
	return fmt.Sprintf("Welcome to %s.\n"+
		"The challenged user always goes first.\n"+
		"Click on the reactions below the game board to place your game pieces.\n"+
		"%s is %s.\n"+
		"%s is %s.",
		snap.Game.Title(),
		domain.DiscordSymbols.Player1, mention(snap.Players[0].ID),
		domain.DiscordSymbols.Player2, mention(snap.Players[1].ID))
}

func turnMessage(snap game.Snapshot) string {
	return fmt.Sprintf("It is %s's turn.\n", snap.CurrentPlayer().Name) + snap.Render(domain.DiscordSymbols)
}

func finishedMessage(snap game.Snapshot) string {
	board := snap.Render(domain.DiscordSymbols) + "\n"
	winner, hasWinner := snap.WinningPlayer()

	switch {
	case snap.State == game.StateAbandoned && hasWinner:
		loser := snap.Player(snap.Winner.Opponent())
		return fmt.Sprintf("%s:white_flag: %s resigned. The winner of the match is %s! :tada:\n",
			board, mention(loser.ID), mention(winner.ID))
	case hasWinner:
		return fmt.Sprintf("%s:tada: The winner of the match is %s! :tada:\n", board, mention(winner.ID))
	default:
		return board + "The board is full. The match is a draw!\n"
	}
}

func idleMessage(snap game.Snapshot) string {
	return fmt.Sprintf("%s %s this game was closed after being idle for too long. The channel will be deleted.",
		mention(snap.Players[0].ID), mention(snap.Players[1].ID))
}

func helpMessage(prefix string, registry *domain.Registry) string {
	var sb strings.Builder
	sb.WriteString("**Games**\n")
	for _, name := range registry.Names() {
		fmt.Fprintf(&sb, "- `%s%s @opponent`\n", prefix, name)
	}
	fmt.Fprintf(&sb, "Type `%sresign` inside a game channel to give up.", prefix)
	return sb.String()
}
