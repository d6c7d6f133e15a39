package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/iamasit07/connect4-bot/internal/service/challenge"
	"github.com/iamasit07/connect4-bot/internal/service/game"
)

func (b *Bot) onMessageReactionAdd(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if b.isSelf(r.UserID) || (r.Member != nil && r.Member.User != nil && r.Member.User.Bot) {
		return
	}

	switch name := r.Emoji.Name; {
	case name == emojiAccept || name == emojiDecline:
		channels, ok := b.channels(r.GuildID)
		if !ok || r.ChannelID != channels.challenges {
			return
		}
		b.answerChallenge(r, channels, name == emojiAccept)
	default:
		if n, ok := keycapNumber(name); ok {
			b.move(r, n)
		}
	}
}

func (b *Bot) answerChallenge(r *discordgo.MessageReactionAdd, channels guildChannels, accept bool) {
	ctx, cancel := b.requestContext()
	defer cancel()

	result, c, err := b.challenges.Respond(ctx, r.MessageID, r.UserID, accept)
	if err != nil {
		if !errors.Is(err, challenge.ErrChallengeNotFound) {
			b.logger.Error().Err(err).Str("challenge", r.MessageID).Msg("answer challenge")
		}
		return
	}
	if result == challenge.ResultIgnored {
		return
	}

	if err := b.api.ChannelMessageDelete(r.ChannelID, r.MessageID); err != nil {
		b.logger.Warn().Err(err).Str("challenge", r.MessageID).Msg("delete challenge message")
	}
	if result == challenge.ResultAccepted {
		b.startGame(r.GuildID, channels, c)
	}
}

// startGame opens a channel for an accepted challenge and posts the first
// board.
func (b *Bot) startGame(guildID string, channels guildChannels, c challenge.Challenge) {
	ch, err := b.api.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:     c.Challenger.Name + " vs " + c.Challenged.Name,
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: channels.category,
	})
	if err != nil {
		b.logger.Error().Err(err).Str("challenge", c.ID).Msg("create game channel")
		return
	}

	ctx, cancel := b.requestContext()
	defer cancel()

	out, err := b.dispatcher.Dispatch(ctx, game.StartEvent{
		SessionID:  ch.ID,
		Game:       c.Game,
		Challenger: c.Challenger,
		Challenged: c.Challenged,
	})
	if err != nil {
		b.logger.Warn().Err(err).Str("challenge", c.ID).Msg("start game")
		if _, err := b.api.ChannelDelete(ch.ID); err != nil {
			b.logger.Warn().Err(err).Str("channel", ch.ID).Msg("delete unused game channel")
		}
		if errors.Is(err, game.ErrPlayerBusy) {
			b.send(channels.challenges, mention(c.Challenger.ID)+" "+mention(c.Challenged.ID)+" finish your current game first.")
		}
		return
	}

	b.trackGame(ch.ID)
	b.send(ch.ID, instructionsMessage(out.Session))
	b.sendBoard(out.Session)
}

func (b *Bot) sendBoard(snap game.Snapshot) {
	msg := b.send(snap.ID, turnMessage(snap))
	if msg == nil {
		return
	}
	emojis := make([]string, 0, snap.Game.MoveCount())
	for i := 1; i <= snap.Game.MoveCount(); i++ {
		emojis = append(emojis, keycap(i))
	}
	b.react(msg, emojis...)
}

// move applies a keycap reaction. Illegal or out-of-turn reactions are
// dropped so the player simply picks again.
func (b *Bot) move(r *discordgo.MessageReactionAdd, n int) {
	ctx, cancel := b.requestContext()
	defer cancel()

	out, err := b.dispatcher.Dispatch(ctx, game.MoveEvent{SessionID: r.ChannelID, PlayerID: r.UserID, Move: n - 1})
	if err != nil {
		if !errors.Is(err, game.ErrSessionNotFound) {
			b.logger.Error().Err(err).Str("session", r.ChannelID).Msg("move")
		}
		return
	}
	if !out.Accepted() {
		b.logger.Debug().Str("session", r.ChannelID).Str("reason", string(out.Reason)).Msg("move dropped")
		return
	}

	if out.Session.Finished() {
		b.send(r.ChannelID, finishedMessage(out.Session))
		b.scheduleDelete(r.ChannelID)
		return
	}
	b.sendBoard(out.Session)
}
