package discord

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/coder/quartz"
	"github.com/iamasit07/connect4-bot/internal/domain"
	"github.com/iamasit07/connect4-bot/internal/service/challenge"
	"github.com/iamasit07/connect4-bot/internal/service/game"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guildID = "g1"

var (
	alice = &discordgo.User{ID: "u-alice", Username: "alice"}
	bob   = &discordgo.User{ID: "u-bob", Username: "bob"}
	carol = &discordgo.User{ID: "u-carol", Username: "carol"}
)

type fixture struct {
	api      *fakeAPI
	clock    *quartz.Mock
	bot      *Bot
	channels guildChannels
	nextMsg  int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	api := newFakeAPI()
	clock := quartz.NewMock(t)
	registry := domain.DefaultRegistry()
	manager := game.NewManager(registry, clock, zerolog.Nop())
	dispatcher := game.NewDispatcher(manager, nil, clock, zerolog.Nop())
	challenges := challenge.NewService(challenge.NewMemoryStore(clock), registry, 10*time.Minute, clock, zerolog.Nop())

	bot := NewBot(api, dispatcher, challenges, Options{
		Prefix:                "!",
		BotChannelName:        "bot-commands",
		ChallengesChannelName: "challenges",
		CategoryName:          "Games",
		ChannelDeleteDelay:    10 * time.Second,
	}, clock, zerolog.Nop())
	t.Cleanup(bot.Close)

	bot.onReady(nil, &discordgo.Ready{User: &discordgo.User{ID: "bot", Username: "gamebot", Bot: true}})
	bot.onGuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: guildID, Name: "test"}})

	channels, ok := bot.channels(guildID)
	require.True(t, ok)
	return &fixture{api: api, clock: clock, bot: bot, channels: channels}
}

func (f *fixture) say(channelID string, author *discordgo.User, content string, mentions ...*discordgo.User) {
	f.nextMsg++
	f.bot.onMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "in-" + strings.Repeat("x", f.nextMsg),
		ChannelID: channelID,
		GuildID:   guildID,
		Content:   content,
		Author:    author,
		Mentions:  mentions,
	}})
}

func (f *fixture) react(channelID, messageID string, user *discordgo.User, emoji string) {
	f.bot.onMessageReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
		UserID:    user.ID,
		MessageID: messageID,
		ChannelID: channelID,
		GuildID:   guildID,
		Emoji:     discordgo.Emoji{Name: emoji},
	}})
}

// challenge has alice challenge bob and returns the challenge message.
func (f *fixture) challenge(t *testing.T) sentMessage {
	t.Helper()
	f.say(f.channels.commands, alice, "!connect4 <@u-bob>", bob)
	msg, ok := f.api.lastMessage(f.channels.challenges)
	require.True(t, ok)
	return msg
}

// startGame runs a challenge through acceptance and returns the game channel.
func (f *fixture) startGame(t *testing.T) string {
	t.Helper()
	msg := f.challenge(t)
	f.react(f.channels.challenges, msg.ID, bob, emojiAccept)
	ch := f.api.channelNamed("alice vs bob")
	require.NotNil(t, ch)
	return ch.ID
}

func (f *fixture) boardMessage(t *testing.T, channelID string) sentMessage {
	t.Helper()
	msg, ok := f.api.lastMessage(channelID)
	require.True(t, ok)
	return msg
}

func TestGuildChannelsCreatedOnce(t *testing.T) {
	f := newFixture(t)

	category := f.api.channelNamed("Games")
	require.NotNil(t, category)
	assert.Equal(t, discordgo.ChannelTypeGuildCategory, category.Type)
	assert.Equal(t, category.ID, f.channels.category)

	for _, name := range []string{"challenges", "bot-commands"} {
		ch := f.api.channelNamed(name)
		require.NotNil(t, ch, name)
		assert.Equal(t, category.ID, ch.ParentID)
		assert.Equal(t, discordgo.ChannelTypeGuildText, ch.Type)
	}

	before := len(f.api.channels)
	f.bot.onGuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: guildID}})
	assert.Len(t, f.api.channels, before)
	again, _ := f.bot.channels(guildID)
	assert.Equal(t, f.channels, again)
}

func TestChallengeMessage(t *testing.T) {
	f := newFixture(t)
	msg := f.challenge(t)

	assert.Equal(t, "<@u-alice> is challenging <@u-bob>. Click ✅ to accept and ❎ to decline. Game: connect4", msg.Content)
	assert.Equal(t, []string{emojiAccept, emojiDecline}, f.api.reactionsOn(msg.ID))
}

func TestCommandsOutsideBotChannelAreIgnored(t *testing.T) {
	f := newFixture(t)

	f.say(f.channels.challenges, alice, "!connect4 <@u-bob>", bob)
	f.say(f.channels.commands, bob, "connect4 <@u-alice>", alice)
	f.say(f.channels.commands, &discordgo.User{ID: "b2", Bot: true}, "!connect4 <@u-alice>", alice)
	f.say(f.channels.commands, alice, "!chess <@u-bob>", bob)

	assert.Empty(t, f.api.messagesIn(f.channels.challenges))
	assert.Empty(t, f.api.messagesIn(f.channels.commands))
}

func TestChallengeValidation(t *testing.T) {
	f := newFixture(t)

	f.say(f.channels.commands, alice, "!connect4")
	f.say(f.channels.commands, alice, "!connect4 <@u-alice>", alice)
	f.say(f.channels.commands, alice, "!connect4 <@u-ghost>")

	replies := f.api.messagesIn(f.channels.commands)
	require.Len(t, replies, 3)
	assert.Contains(t, replies[0].Content, "Mention the player")
	assert.Equal(t, "You cannot challenge yourself.", replies[1].Content)
	assert.Equal(t, "I could not find that player.", replies[2].Content)
	assert.Empty(t, f.api.messagesIn(f.channels.challenges))
}

func TestMentionResolvedThroughAPI(t *testing.T) {
	f := newFixture(t)
	f.api.users[carol.ID] = carol

	f.say(f.channels.commands, alice, "!tictactoe <@!u-carol>")
	msg, ok := f.api.lastMessage(f.channels.challenges)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(msg.Content, "Game: tictactoe"))
}

func TestHelpCommand(t *testing.T) {
	f := newFixture(t)
	f.say(f.channels.commands, alice, "!help")

	msg, ok := f.api.lastMessage(f.channels.commands)
	require.True(t, ok)
	assert.Contains(t, msg.Content, "`!connect4 @opponent`")
	assert.Contains(t, msg.Content, "`!tictactoe @opponent`")
}

func TestChallengeAnswers(t *testing.T) {
	t.Run("challenger cannot accept", func(t *testing.T) {
		f := newFixture(t)
		msg := f.challenge(t)
		f.react(f.channels.challenges, msg.ID, alice, emojiAccept)
		f.react(f.channels.challenges, msg.ID, carol, emojiDecline)
		assert.Empty(t, f.api.deletedMessages())
		assert.Nil(t, f.api.channelNamed("alice vs bob"))
	})

	t.Run("decline by challenger", func(t *testing.T) {
		f := newFixture(t)
		msg := f.challenge(t)
		f.react(f.channels.challenges, msg.ID, alice, emojiDecline)
		assert.Equal(t, []string{msg.ID}, f.api.deletedMessages())
		assert.Nil(t, f.api.channelNamed("alice vs bob"))

		// a second answer finds nothing
		f.react(f.channels.challenges, msg.ID, bob, emojiAccept)
		assert.Nil(t, f.api.channelNamed("alice vs bob"))
	})

	t.Run("bot reactions", func(t *testing.T) {
		f := newFixture(t)
		msg := f.challenge(t)
		f.react(f.channels.challenges, msg.ID, &discordgo.User{ID: "bot"}, emojiAccept)
		assert.Empty(t, f.api.deletedMessages())
	})
}

func TestAcceptStartsGame(t *testing.T) {
	f := newFixture(t)
	msg := f.challenge(t)
	f.react(f.channels.challenges, msg.ID, bob, emojiAccept)

	assert.Equal(t, []string{msg.ID}, f.api.deletedMessages())
	ch := f.api.channelNamed("alice vs bob")
	require.NotNil(t, ch)
	assert.Equal(t, f.channels.category, ch.ParentID)

	sent := f.api.messagesIn(ch.ID)
	require.Len(t, sent, 2)
	assert.True(t, strings.HasPrefix(sent[0].Content, "Welcome to Connect4.\nThe challenged user always goes first."))
	assert.Contains(t, sent[0].Content, ":small_blue_diamond: is <@u-alice>.")
	assert.Contains(t, sent[0].Content, ":small_orange_diamond: is <@u-bob>.")

	wantBoard := "It is bob's turn.\n" + domain.Render(domain.NewBoard(), domain.DiscordSymbols)
	assert.Equal(t, wantBoard, sent[1].Content)
	assert.Equal(t, []string{keycap(1), keycap(2), keycap(3), keycap(4), keycap(5), keycap(6), keycap(7)},
		f.api.reactionsOn(sent[1].ID))
}

func TestPlayToWinAndChannelDeletion(t *testing.T) {
	f := newFixture(t)
	channelID := f.startGame(t)

	// alice may not open
	f.react(channelID, "m", alice, keycap(1))
	assert.Len(t, f.api.messagesIn(channelID), 2)

	players := []*discordgo.User{bob, alice}
	columns := []int{1, 2, 1, 2, 1, 2}
	for i, col := range columns {
		f.react(channelID, "m", players[i%2], keycap(col))
	}
	last := f.boardMessage(t, channelID)
	assert.True(t, strings.HasPrefix(last.Content, "It is bob's turn.\n"))

	f.react(channelID, "m", bob, keycap(1))
	won := f.boardMessage(t, channelID)
	assert.True(t, strings.HasSuffix(won.Content, "\n:tada: The winner of the match is <@u-bob>! :tada:\n"))
	assert.Empty(t, f.api.reactionsOn(won.ID))
	assert.Equal(t, 0, f.bot.dispatcher.Manager().Len())

	// later reactions have no session to act on
	f.react(channelID, "m", alice, keycap(3))
	assert.Equal(t, won.ID, f.boardMessage(t, channelID).ID)

	assert.Empty(t, f.api.deletedChannels())
	f.clock.Advance(10 * time.Second).MustWait(context.Background())
	assert.Equal(t, []string{channelID}, f.api.deletedChannels())
}

func TestIdleGameChannelIsClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channelID := f.startGame(t)
	manager := f.bot.dispatcher.Manager()

	// a session from another transport is reaped without touching Discord
	_, err := manager.Create("ws-game", "connect4", game.Player{ID: "ws:x"}, game.Player{ID: "ws:y"})
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour).MustWait(ctx)
	assert.Equal(t, 2, manager.CleanupStale(time.Hour))
	assert.Equal(t, 0, manager.Len())

	notice := f.boardMessage(t, channelID)
	assert.Equal(t, "<@u-alice> <@u-bob> this game was closed after being idle for too long. The channel will be deleted.", notice.Content)
	assert.Empty(t, f.api.messagesIn("ws-game"))

	f.clock.Advance(10 * time.Second).MustWait(ctx)
	assert.Equal(t, []string{channelID}, f.api.deletedChannels())

	// reactions on the closed board have no session to act on
	f.react(channelID, "m", bob, keycap(1))
	assert.Equal(t, notice.ID, f.boardMessage(t, channelID).ID)
}

func TestFinishedGameIsNotClosedTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channelID := f.startGame(t)

	f.say(channelID, alice, "!resign")
	f.clock.Advance(10 * time.Second).MustWait(ctx)
	require.Equal(t, []string{channelID}, f.api.deletedChannels())

	f.bot.onStaleSession(game.Snapshot{ID: channelID, Players: [2]game.Player{{ID: alice.ID}, {ID: bob.ID}}})
	f.clock.Advance(10 * time.Second).MustWait(ctx)
	assert.Equal(t, []string{channelID}, f.api.deletedChannels())
}

func TestIllegalMoveIsSilent(t *testing.T) {
	f := newFixture(t)
	channelID := f.startGame(t)

	players := []*discordgo.User{bob, alice}
	for i := 0; i < domain.Rows; i++ {
		f.react(channelID, "m", players[i%2], keycap(4))
	}
	before := len(f.api.messagesIn(channelID))

	// column 4 is full and it is bob's turn again
	f.react(channelID, "m", bob, keycap(4))
	assert.Len(t, f.api.messagesIn(channelID), before)

	f.react(channelID, "m", bob, keycap(5))
	assert.Len(t, f.api.messagesIn(channelID), before+1)
}

func TestResign(t *testing.T) {
	f := newFixture(t)
	channelID := f.startGame(t)

	f.say(channelID, carol, "!resign")
	assert.Len(t, f.api.messagesIn(channelID), 2)

	f.say(channelID, alice, "!resign")
	msg := f.boardMessage(t, channelID)
	assert.Contains(t, msg.Content, ":white_flag: <@u-alice> resigned. The winner of the match is <@u-bob>!")

	f.clock.Advance(10 * time.Second).MustWait(context.Background())
	assert.Equal(t, []string{channelID}, f.api.deletedChannels())
}

func TestBusyPlayerCannotStartSecondGame(t *testing.T) {
	f := newFixture(t)
	f.startGame(t)

	f.say(f.channels.commands, carol, "!connect4 <@u-bob>", bob)
	msg, ok := f.api.lastMessage(f.channels.challenges)
	require.True(t, ok)
	f.react(f.channels.challenges, msg.ID, bob, emojiAccept)

	extra := f.api.channelNamed("carol vs bob")
	require.NotNil(t, extra)
	assert.Contains(t, f.api.deletedChannels(), extra.ID)
	notice, _ := f.api.lastMessage(f.channels.challenges)
	assert.Contains(t, notice.Content, "finish your current game first")
}

func TestKeycapAndMentionParsing(t *testing.T) {
	for n := 1; n <= 9; n++ {
		got, ok := keycapNumber(keycap(n))
		require.True(t, ok)
		assert.Equal(t, n, got)
	}
	got, ok := keycapNumber("3\uFE0F\u20E3")
	assert.True(t, ok)
	assert.Equal(t, 3, got)

	for _, bad := range []string{"0\u20E3", "✅", "12\u20E3", ""} {
		_, ok := keycapNumber(bad)
		assert.False(t, ok, bad)
	}

	id, ok := parseMention("<@!42>")
	assert.True(t, ok)
	assert.Equal(t, "42", id)
	_, ok = parseMention("@42")
	assert.False(t, ok)
}
