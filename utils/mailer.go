package utils

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESMailer sends plain-text notification emails.
type SESMailer struct {
	client *ses.Client
	from   string
}

func NewSESMailer(cfg aws.Config, from string) *SESMailer {
	return &SESMailer{client: ses.NewFromConfig(cfg), from: from}
}

func (m *SESMailer) Send(ctx context.Context, to, subject, body string) error {
	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body:    &types.Body{Text: &types.Content{Data: aws.String(body)}},
		},
		Source: aws.String(m.from),
	})
	if err != nil {
		return fmt.Errorf("email send failed: %w", err)
	}
	return nil
}

// RequestStatusEmail builds the message sent when an admin changes a meal request.
func RequestStatusEmail(mealTitle, status string) (subject, body string) {
	subject = "Your meal request was updated"
	body = fmt.Sprintf("Your request for %q is now %q.\n\nThank you for using the hostel meal service.", mealTitle, status)
	return subject, body
}

// BadgeEmail builds the message sent after a package purchase upgrades a badge.
func BadgeEmail(badge string) (subject, body string) {
	subject = fmt.Sprintf("Welcome to the %s package", badge)
	body = fmt.Sprintf("Your account now carries the %s badge. You can request premium meals right away.", badge)
	return subject, body
}
