package services

import (
	"context"
	"fmt"
	"html"
	"log"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/resend/resend-go/v2"
)

// AssignmentNotice tells one athlete that content was assigned to them.
type AssignmentNotice struct {
	Kind         models.ContentKind
	Title        string
	AthleteName  string
	AthleteEmail string
	Link         string
}

type Notifier interface {
	NotifyAssignment(ctx context.Context, notice AssignmentNotice) error
}

type NoopNotifier struct{}

func (NoopNotifier) NotifyAssignment(context.Context, AssignmentNotice) error {
	return nil
}

type ResendNotifier struct {
	client *resend.Client
	from   string
}

func NewResendNotifier(apiKey, from string) *ResendNotifier {
	return &ResendNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (n *ResendNotifier) NotifyAssignment(ctx context.Context, notice AssignmentNotice) error {
	if notice.AthleteEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("New %s: %s", notice.Kind, notice.Title)
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your trainer assigned you a new %s: <strong>%s</strong>.</p><p><a href="%s">Open it in Fitzo</a></p>`,
		html.EscapeString(notice.AthleteName),
		html.EscapeString(string(notice.Kind)),
		html.EscapeString(notice.Title),
		html.EscapeString(notice.Link),
	)

	sent, err := n.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{notice.AthleteEmail},
		Subject: subject,
		Html:    body,
	})
	if err != nil {
		return fmt.Errorf("send assignment email: %w", err)
	}
	log.Printf("Sent %s assignment email %s to %s", notice.Kind, sent.Id, notice.AthleteEmail)
	return nil
}

// notifyAssignees sends one notice per athlete. Delivery failures are logged
// and never surface to the caller.
func notifyAssignees(ctx context.Context, notifier Notifier, kind models.ContentKind, title, link string, athletes []models.Profile) {
	if notifier == nil {
		return
	}
	for _, athlete := range athletes {
		err := notifier.NotifyAssignment(ctx, AssignmentNotice{
			Kind:         kind,
			Title:        title,
			AthleteName:  athlete.Name,
			AthleteEmail: athlete.Email,
			Link:         link,
		})
		if err != nil {
			log.Printf("Failed to notify %s about %s %q: %v", athlete.ID, kind, title, err)
		}
	}
}
