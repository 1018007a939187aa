package notifier

import (
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/mosaic-visa/internal/application"
	"github.com/gdg-garage/mosaic-visa/internal/export"
	"github.com/gdg-garage/mosaic-visa/internal/models"
)

type fakeSender struct {
	channel string
	content string
	err     error
}

func (f *fakeSender) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channel = channelID
	f.content = content
	return &discordgo.Message{}, f.err
}

func testSubmission() (models.User, models.Submission) {
	user := models.User{Email: "agence@example.com", Profile: models.AgencyProfile{AgencyName: "Atlas Voyages"}}
	sub := models.Submission{
		Filename: "Jean_Dupont_0600000000.txt",
		Document: export.Document{
			CommonData: export.CommonData{DepartureDate: "2026-11-20", ReturnDate: "2026-12-05"},
			ApplicantData: []application.Applicant{
				{Name: "Jean", Surname: "Dupont", PassportNumber: "AB123456"},
				{Name: "Marie", Surname: "Dupont", PassportNumber: "CD654321"},
			},
		},
	}
	sub.ID = 12
	return user, sub
}

func TestNotifySubmission(t *testing.T) {
	sender := &fakeSender{}
	n := &DiscordNotifier{session: sender, channelID: "chan"}

	user, sub := testSubmission()
	if err := n.NotifySubmission(user, sub); err != nil {
		t.Fatalf("NotifySubmission returned error: %v", err)
	}

	if sender.channel != "chan" {
		t.Errorf("expected channel chan, got %q", sender.channel)
	}
	for _, want := range []string{"#12", "Atlas Voyages", "Jean Dupont, Marie Dupont", "2026-11-20 - 2026-12-05", sub.Filename} {
		if !strings.Contains(sender.content, want) {
			t.Errorf("message %q does not contain %q", sender.content, want)
		}
	}
	if strings.Contains(sender.content, "AB123456") {
		t.Errorf("message must not leak passport numbers")
	}
}

func TestNotifySubmission_Errors(t *testing.T) {
	user, sub := testSubmission()

	if err := NewDiscordNotifier(nil, "chan").NotifySubmission(user, sub); err == nil {
		t.Error("expected error without a discord session")
	}
	if err := (&DiscordNotifier{session: &fakeSender{}}).NotifySubmission(user, sub); err == nil {
		t.Error("expected error without a channel")
	}

	failing := &DiscordNotifier{session: &fakeSender{err: errors.New("boom")}, channelID: "chan"}
	if err := failing.NotifySubmission(user, sub); err == nil {
		t.Error("expected send failure to be returned")
	}
}
