package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// messageSender is the part of *discordgo.Session the notifier uses.
type messageSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts alerts to one channel through the bot REST API. It never
// opens a gateway connection.
type Discord struct {
	sender    messageSender
	channelID string
}

// NewDiscord creates a notifier for channelID authenticated with a bot token.
func NewDiscord(token, channelID string) (*Discord, error) {
	if token == "" || channelID == "" {
		return nil, errors.New("discord token and channel id are required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	return &Discord{sender: session, channelID: channelID}, nil
}

func (d *Discord) Notify(ctx context.Context, a Alert) error {
	if _, err := d.sender.ChannelMessageSend(d.channelID, a.Message(), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("sending discord alert: %w", err)
	}
	return nil
}
