package notifier

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/mosaic-visa/internal/models"
)

type Notifier interface {
	NotifySubmission(user models.User, submission models.Submission) error
}

// messageSender is the part of *discordgo.Session the notifier uses.
type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   messageSender
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	n := &DiscordNotifier{channelID: channelID}
	if session != nil {
		n.session = session
	}
	return n
}

// NotifySubmission posts a short summary of a new archived submission.
// Passport numbers are never included.
func (n *DiscordNotifier) NotifySubmission(user models.User, submission models.Submission) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	if _, err := n.session.ChannelMessageSend(n.channelID, submissionMessage(user, submission)); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}

func submissionMessage(user models.User, submission models.Submission) string {
	doc := submission.Document

	agency := user.Profile.AgencyName
	if agency == "" {
		agency = user.Email
	}

	names := make([]string, 0, len(doc.ApplicantData))
	for _, a := range doc.ApplicantData {
		names = append(names, strings.TrimSpace(a.Name+" "+a.Surname))
	}
	applicants := "-"
	if len(names) > 0 {
		applicants = strings.Join(names, ", ")
	}

	return fmt.Sprintf("🛂 **New visa export** #%d\n**Agency:** %s\n**Applicants (%d):** %s\n**Travel:** %s - %s\n**File:** %s",
		submission.ID,
		agency,
		len(doc.ApplicantData),
		applicants,
		doc.CommonData.DepartureDate,
		doc.CommonData.ReturnDate,
		submission.Filename,
	)
}
