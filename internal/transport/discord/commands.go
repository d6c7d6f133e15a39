package discord

import (
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/iamasit07/connect4-bot/internal/service/game"
)

const (
	commandHelp   = "help"
	commandResign = "resign"
)

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	content := strings.TrimSpace(m.Content)
	if !strings.HasPrefix(content, b.opts.Prefix) {
		return
	}
	args := strings.Fields(strings.TrimPrefix(content, b.opts.Prefix))
	if len(args) == 0 {
		return
	}
	command := strings.ToLower(args[0])

	// game channels only understand resign
	if _, inGame := b.dispatcher.Manager().Get(m.ChannelID); inGame {
		if command == commandResign {
			b.resign(m)
		}
		return
	}

	channels, ok := b.channels(m.GuildID)
	if !ok || m.ChannelID != channels.commands {
		return
	}

	if command == commandHelp {
		b.send(m.ChannelID, helpMessage(b.opts.Prefix, b.dispatcher.Manager().Registry()))
		return
	}
	if _, err := b.dispatcher.Manager().Registry().Lookup(command); err != nil {
		return
	}
	b.challenge(m, channels, command, args[1:])
}

func (b *Bot) challenge(m *discordgo.MessageCreate, channels guildChannels, gameName string, args []string) {
	if len(args) == 0 {
		b.send(m.ChannelID, "Mention the player you want to challenge, e.g. `"+b.opts.Prefix+gameName+" @someone`.")
		return
	}
	opponent, ok := b.resolveMention(m.Message, args[0])
	if !ok {
		b.send(m.ChannelID, "I could not find that player.")
		return
	}
	if opponent.Bot {
		b.send(m.ChannelID, "Bots cannot play.")
		return
	}

	challenger := game.Player{ID: m.Author.ID, Name: m.Author.Username}
	challenged := game.Player{ID: opponent.ID, Name: opponent.Username}
	if challenger.ID == challenged.ID {
		b.send(m.ChannelID, "You cannot challenge yourself.")
		return
	}

	msg := b.send(channels.challenges, challengeMessage(challenger, challenged, gameName))
	if msg == nil {
		return
	}

	ctx, cancel := b.requestContext()
	defer cancel()
	if _, err := b.challenges.Issue(ctx, msg.ID, gameName, challenger, challenged); err != nil {
		b.logger.Error().Err(err).Str("challenge", msg.ID).Msg("issue challenge")
		if err := b.api.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
			b.logger.Warn().Err(err).Msg("delete failed challenge")
		}
		b.send(m.ChannelID, "Could not create the challenge, try again later.")
		return
	}
	b.react(msg, emojiAccept, emojiDecline)
}

// resolveMention finds the mentioned user among the message's mentions,
// falling back to the API.
func (b *Bot) resolveMention(m *discordgo.Message, arg string) (*discordgo.User, bool) {
	id, ok := parseMention(arg)
	if !ok {
		return nil, false
	}
	for _, u := range m.Mentions {
		if u.ID == id {
			return u, true
		}
	}

	u, err := b.api.User(id)
	if err != nil {
		b.logger.Debug().Err(err).Str("user", id).Msg("resolve mention")
		return nil, false
	}
	return u, true
}

func (b *Bot) resign(m *discordgo.MessageCreate) {
	ctx, cancel := b.requestContext()
	defer cancel()

	out, err := b.dispatcher.Dispatch(ctx, game.AbandonEvent{SessionID: m.ChannelID, PlayerID: m.Author.ID})
	if err != nil {
		if !errors.Is(err, game.ErrSessionNotFound) {
			b.logger.Error().Err(err).Str("session", m.ChannelID).Msg("resign")
		}
		return
	}
	if out.Kind != game.OutcomeAbandoned {
		return
	}
	b.send(m.ChannelID, finishedMessage(out.Session))
	b.scheduleDelete(m.ChannelID)
}

