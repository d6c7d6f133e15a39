package discord

import (
	"errors"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
)

type sentMessage struct {
	ChannelID string
	ID        string
	Content   string
}

type fakeAPI struct {
	mu        sync.Mutex
	nextID    int
	channels  []*discordgo.Channel
	messages  []sentMessage
	reactions map[string][]string
	deletedMs []string
	deletedCh []string
	users     map[string]*discordgo.User
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		reactions: make(map[string][]string),
		users:     make(map[string]*discordgo.User),
	}
}

func (f *fakeAPI) id() string {
	f.nextID++
	return strconv.Itoa(1000 + f.nextID)
}

func (f *fakeAPI) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := sentMessage{ChannelID: channelID, ID: f.id(), Content: content}
	f.messages = append(f.messages, msg)
	return &discordgo.Message{ID: msg.ID, ChannelID: channelID, Content: content}, nil
}

func (f *fakeAPI) ChannelMessageDelete(_, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedMs = append(f.deletedMs, messageID)
	return nil
}

func (f *fakeAPI) MessageReactionAdd(_, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions[messageID] = append(f.reactions[messageID], emojiID)
	return nil
}

func (f *fakeAPI) GuildChannels(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*discordgo.Channel
	for _, ch := range f.channels {
		if ch.GuildID == guildID {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (f *fakeAPI) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := &discordgo.Channel{ID: f.id(), GuildID: guildID, Name: data.Name, Type: data.Type, ParentID: data.ParentID}
	f.channels = append(f.channels, ch)
	return ch, nil
}

func (f *fakeAPI) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedCh = append(f.deletedCh, channelID)
	return &discordgo.Channel{ID: channelID}, nil
}

func (f *fakeAPI) User(userID string, _ ...discordgo.RequestOption) (*discordgo.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, errors.New("unknown user")
	}
	return u, nil
}

func (f *fakeAPI) channelNamed(name string) *discordgo.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.channels {
		if ch.Name == name {
			return ch
		}
	}
	return nil
}

func (f *fakeAPI) lastMessage(channelID string) (sentMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].ChannelID == channelID {
			return f.messages[i], true
		}
	}
	return sentMessage{}, false
}

func (f *fakeAPI) messagesIn(channelID string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.messages {
		if m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeAPI) reactionsOn(messageID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.reactions[messageID]...)
}

func (f *fakeAPI) deletedChannels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletedCh...)
}

func (f *fakeAPI) deletedMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletedMs...)
}
