package notifier

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/campus-events/eventhub-api/internal/models"
	"github.com/rs/zerolog/log"
)

// Notifier posts operational notices to the staff channel. It is separate
// from attendee mail: staff watch a channel, attendees get email.
type Notifier interface {
	EventSubmitted(event models.Event, organizer models.User) error
	EventReviewed(event models.Event) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(botToken, channelID string) (*DiscordNotifier, error) {
	if botToken == "" || channelID == "" {
		return nil, fmt.Errorf("discord bot token or channel ID not configured")
	}
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, err
	}
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}, nil
}

func (n *DiscordNotifier) EventSubmitted(event models.Event, organizer models.User) error {
	message := fmt.Sprintf("📥 **Event Submitted for Review**\n**Title:** %s\n**Organizer:** %s\n**When:** %s - %s\n**Mode:** %s",
		event.Title,
		organizer.Username,
		event.StartTime.Format("2006-01-02 15:04"),
		event.EndTime.Format("2006-01-02 15:04"),
		event.Mode,
	)
	return n.send(message)
}

func (n *DiscordNotifier) EventReviewed(event models.Event) error {
	var message string
	switch event.Status {
	case models.StatusApproved:
		message = fmt.Sprintf("✅ **Event Approved**\n**Title:** %s\n**Location:** %s", event.Title, event.Location)
	case models.StatusRejected:
		message = fmt.Sprintf("❌ **Event Rejected**\n**Title:** %s\n**Reason:** %s", event.Title, event.RejectionReason)
	default:
		return nil
	}
	return n.send(message)
}

func (n *DiscordNotifier) send(message string) error {
	if n == nil || n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}
	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to send discord message")
		return err
	}
	return nil
}
