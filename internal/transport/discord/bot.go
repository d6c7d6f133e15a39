package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/coder/quartz"
	"github.com/iamasit07/connect4-bot/internal/service/challenge"
	"github.com/iamasit07/connect4-bot/internal/service/game"
	"github.com/rs/zerolog"
)

const requestTimeout = 10 * time.Second

type Options struct {
	Prefix                string
	BotChannelName        string
	ChallengesChannelName string
	CategoryName          string
	ChannelDeleteDelay    time.Duration
}

// guildChannels are the channel IDs the bot works with in one guild.
type guildChannels struct {
	category   string
	challenges string
	commands   string
}

// Bot maps Discord messages and reactions onto challenges and game events.
type Bot struct {
	api        API
	dispatcher *game.Dispatcher
	challenges *challenge.Service
	opts       Options
	clock      quartz.Clock
	logger     zerolog.Logger

	mu       sync.RWMutex
	selfID   string
	guilds   map[string]guildChannels
	games    map[string]struct{}
	deleting map[string]*quartz.Timer
}

func NewBot(api API, dispatcher *game.Dispatcher, challenges *challenge.Service, opts Options, clock quartz.Clock, logger zerolog.Logger) *Bot {
	b := &Bot{
		api:        api,
		dispatcher: dispatcher,
		challenges: challenges,
		opts:       opts,
		clock:      clock,
		logger:     logger.With().Str("component", "discord").Logger(),
		guilds:     make(map[string]guildChannels),
		games:      make(map[string]struct{}),
		deleting:   make(map[string]*quartz.Timer),
	}
	dispatcher.Manager().OnStale(b.onStaleSession)
	return b
}

// Attach registers the bot's handlers and gateway intents on s.
func (b *Bot) Attach(s *discordgo.Session) {
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent

	s.AddHandler(b.onReady)
	s.AddHandler(b.onGuildCreate)
	s.AddHandler(b.onMessageCreate)
	s.AddHandler(b.onMessageReactionAdd)
}

// Serve opens the gateway connection and holds it until ctx is cancelled.
func Serve(ctx context.Context, s *discordgo.Session, b *Bot) error {
	b.Attach(s)
	if err := s.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	<-ctx.Done()

	b.Close()
	if err := s.Close(); err != nil {
		return fmt.Errorf("close discord session: %w", err)
	}
	return nil
}

// Close stops pending channel deletions.
func (b *Bot) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, t := range b.deleting {
		t.Stop()
		delete(b.deleting, id)
	}
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.mu.Lock()
	b.selfID = r.User.ID
	b.mu.Unlock()

	b.logger.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("logged in")
}

func (b *Bot) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Unavailable {
		return
	}
	if err := b.ensureChannels(g.ID); err != nil {
		b.logger.Error().Err(err).Str("guild", g.ID).Msg("prepare channels")
		return
	}
	b.logger.Info().Str("guild", g.Name).Msg("guild ready")
}

func (b *Bot) isSelf(userID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return userID == b.selfID
}

func (b *Bot) channels(guildID string) (guildChannels, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ch, ok := b.guilds[guildID]
	return ch, ok
}

func (b *Bot) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func (b *Bot) send(channelID, content string) *discordgo.Message {
	msg, err := b.api.ChannelMessageSend(channelID, content)
	if err != nil {
		b.logger.Error().Err(err).Str("channel", channelID).Msg("send message")
		return nil
	}
	return msg
}

func (b *Bot) react(msg *discordgo.Message, emojis ...string) {
	for _, e := range emojis {
		if err := b.api.MessageReactionAdd(msg.ChannelID, msg.ID, e); err != nil {
			b.logger.Warn().Err(err).Str("emoji", e).Msg("add reaction")
			return
		}
	}
}

// trackGame records channelID as a live game channel owned by this bot.
func (b *Bot) trackGame(channelID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.games[channelID] = struct{}{}
}

// untrackGame reports whether channelID was a tracked game channel.
func (b *Bot) untrackGame(channelID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.games[channelID]
	delete(b.games, channelID)
	return ok
}

// onStaleSession closes the channel of a game the idle reaper dropped.
// Sessions started by other transports are not ours to touch.
func (b *Bot) onStaleSession(snap game.Snapshot) {
	if !b.untrackGame(snap.ID) {
		return
	}
	b.logger.Info().Str("session", snap.ID).Msg("closing idle game channel")
	b.send(snap.ID, idleMessage(snap))
	b.scheduleDelete(snap.ID)
}

// scheduleDelete removes a finished game's channel after the configured delay.
func (b *Bot) scheduleDelete(channelID string) {
	b.untrackGame(channelID)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, pending := b.deleting[channelID]; pending {
		return
	}

	b.deleting[channelID] = b.clock.AfterFunc(b.opts.ChannelDeleteDelay, func() {
		b.mu.Lock()
		delete(b.deleting, channelID)
		b.mu.Unlock()

		if _, err := b.api.ChannelDelete(channelID); err != nil {
			b.logger.Warn().Err(err).Str("channel", channelID).Msg("delete game channel")
		}
	}, "discord", "channel-delete")
}
