package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Mailer sends marketplace emails through SES. Delivery is best-effort;
// callers log failures instead of failing the originating request.
type Mailer struct {
	client *ses.Client
	sender string
}

func NewMailer(ctx context.Context, region, sender string) (*Mailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Mailer{client: ses.NewFromConfig(cfg), sender: sender}, nil
}

// SendInvitation emails an influencer that a brand invited them to a campaign.
func (m *Mailer) SendInvitation(ctx context.Context, to, campaignTitle string) error {
	subject := fmt.Sprintf("You've been invited to %q", campaignTitle)
	body := fmt.Sprintf(
		"A brand thinks you're a great fit for %q and has invited you to collaborate. "+
			"Open the app to view the campaign and respond.", campaignTitle)
	return m.send(ctx, to, subject, body)
}

// SendApplicationReceived emails a brand that a new application arrived.
func (m *Mailer) SendApplicationReceived(ctx context.Context, to, campaignTitle string) error {
	subject := fmt.Sprintf("New application for %q", campaignTitle)
	body := fmt.Sprintf("An influencer just applied to %q. Open the app to review the application.", campaignTitle)
	return m.send(ctx, to, subject, body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(m.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}
