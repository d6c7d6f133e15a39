package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// ensureChannels finds or creates the category, challenges channel and
// command channel for a guild.
func (b *Bot) ensureChannels(guildID string) error {
	existing, err := b.api.GuildChannels(guildID)
	if err != nil {
		return fmt.Errorf("list channels: %w", err)
	}

	category, err := b.findOrCreate(guildID, existing, b.opts.CategoryName, discordgo.ChannelTypeGuildCategory, "")
	if err != nil {
		return err
	}
	challenges, err := b.findOrCreate(guildID, existing, b.opts.ChallengesChannelName, discordgo.ChannelTypeGuildText, category)
	if err != nil {
		return err
	}
	commands, err := b.findOrCreate(guildID, existing, b.opts.BotChannelName, discordgo.ChannelTypeGuildText, category)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.guilds[guildID] = guildChannels{category: category, challenges: challenges, commands: commands}
	b.mu.Unlock()
	return nil
}

func (b *Bot) findOrCreate(guildID string, existing []*discordgo.Channel, name string, kind discordgo.ChannelType, parentID string) (string, error) {
	for _, ch := range existing {
		if ch.Name == name && ch.Type == kind && ch.ParentID == parentID {
			return ch.ID, nil
		}
	}

	ch, err := b.api.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     kind,
		ParentID: parentID,
	})
	if err != nil {
		return "", fmt.Errorf("create channel %q: %w", name, err)
	}
	b.logger.Info().Str("guild", guildID).Str("channel", name).Msg("channel created")
	return ch.ID, nil
}
