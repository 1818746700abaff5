// Package notify delivers post-admission side effects: the autoresponder
// confirmation email (AWS SES) and the campaign webhook. Both are
// pro-gated and best-effort; a failed delivery never fails the entry that
// triggered it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	appconfig "github.com/prizejet/prizejet/internal/config"
	"github.com/prizejet/prizejet/internal/domain"
	"github.com/prizejet/prizejet/internal/pkg/logger"
)

const deliverTimeout = 10 * time.Second

type emailSender interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Service fans an accepted entry out to the campaign's integrations.
type Service struct {
	ses       emailSender
	fromEmail string
	fromName  string

	httpClient *http.Client
	baseURL    string
	isPro      func(ownerID string) bool
}

// New creates the notification service. When the mailer is disabled the
// autoresponder is skipped but webhooks still fire.
func New(ctx context.Context, cfg appconfig.MailerConfig, baseURL string, isPro func(string) bool) (*Service, error) {
	s := &Service{
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		httpClient: &http.Client{Timeout: deliverTimeout},
		baseURL:    baseURL,
		isPro:      isPro,
	}
	if !cfg.Enabled {
		return s, nil
	}

	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	s.ses = sesv2.NewFromConfig(awsCfg)
	return s, nil
}

// EntryCreated delivers the autoresponder email and webhook for a freshly
// admitted entry. It returns immediately; delivery runs in the background.
func (s *Service) EntryCreated(c *domain.Campaign, e *domain.Entry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		defer cancel()
		s.deliver(ctx, c, e)
	}()
}

func (s *Service) deliver(ctx context.Context, c *domain.Campaign, e *domain.Entry) {
	if !s.isPro(c.OwnerID) {
		return
	}
	if c.ProFeatures.Autoresponder.Enabled && s.ses != nil {
		if err := s.sendConfirmation(ctx, c, e); err != nil {
			logger.Error("autoresponder send failed",
				"campaign_id", c.ID, "entry_id", e.ID, "error", err)
		}
	}
	if c.ProFeatures.WebhookURL != "" {
		if err := s.postWebhook(ctx, c, e); err != nil {
			logger.Error("webhook delivery failed",
				"campaign_id", c.ID, "url", c.ProFeatures.WebhookURL, "error", err)
		}
	}
}

// ReferralLink is the URL a participant shares to earn points.
func (s *Service) ReferralLink(c *domain.Campaign, e *domain.Entry) string {
	if c.Slug == nil {
		return ""
	}
	return fmt.Sprintf("%s/c/%s?ref=%s", s.baseURL, *c.Slug, e.ReferralCode)
}

func (s *Service) sendConfirmation(ctx context.Context, c *domain.Campaign, e *domain.Entry) error {
	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYou're in! Your entry for %q has been received.\n\n"+
			"Share your personal link to earn bonus points:\n%s\n",
		e.Name, c.Title, s.ReferralLink(c, e))

	_, err := s.ses.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{e.Email}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(fmt.Sprintf("You're entered: %s", c.Title))},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sending confirmation: %w", err)
	}
	return nil
}

// webhookPayload is the JSON body posted to the campaign webhook.
// Deliveries are single-attempt; consumers that miss one re-sync via the
// entries API.
type webhookPayload struct {
	Event      string    `json:"event"`
	CampaignID string    `json:"campaign_id"`
	EntryID    string    `json:"entry_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Points     int       `json:"points"`
	Referred   bool      `json:"referred"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Service) postWebhook(ctx context.Context, c *domain.Campaign, e *domain.Entry) error {
	payload, err := json.Marshal(webhookPayload{
		Event:      "entry.created",
		CampaignID: c.ID,
		EntryID:    e.ID,
		Email:      e.Email,
		Name:       e.Name,
		Points:     e.Points,
		Referred:   e.IsReferred(),
		CreatedAt:  e.CreatedAt,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ProFeatures.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
