package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/prizejet/prizejet/internal/domain"
)

type fakeSender struct {
	inputs []*sesv2.SendEmailInput
}

func (f *fakeSender) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sesv2.SendEmailOutput{}, nil
}

func proService(isPro bool) (*Service, *fakeSender) {
	sender := &fakeSender{}
	return &Service{
		ses:        sender,
		fromEmail:  "hello@prizejet.example",
		fromName:   "PrizeJet",
		httpClient: &http.Client{Timeout: time.Second},
		baseURL:    "https://prizejet.example",
		isPro:      func(string) bool { return isPro },
	}, sender
}

func testCampaign(webhookURL string, autoresponder bool) *domain.Campaign {
	slug := "summer-a1b2c"
	return &domain.Campaign{
		ID:      "c-1",
		OwnerID: "owner@example.com",
		Title:   "Summer Giveaway",
		Slug:    &slug,
		ProFeatures: domain.ProFeatures{
			Autoresponder: domain.AutoresponderConfig{Enabled: autoresponder, Provider: "ses"},
			WebhookURL:    webhookURL,
		},
	}
}

func testEntry() *domain.Entry {
	ref := "r-0"
	return &domain.Entry{
		ID:           "e-1",
		CampaignID:   "c-1",
		Email:        "alice@example.com",
		Name:         "Alice",
		ReferralCode: "a1b2c3d4",
		ReferrerID:   &ref,
		Points:       1,
		CreatedAt:    time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
	}
}

func TestWebhookPayload(t *testing.T) {
	got := make(chan webhookPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		var p webhookPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		got <- p
	}))
	defer srv.Close()

	s, _ := proService(true)
	s.deliver(context.Background(), testCampaign(srv.URL, false), testEntry())

	select {
	case p := <-got:
		if p.Event != "entry.created" || p.EntryID != "e-1" || !p.Referred {
			t.Fatalf("unexpected payload: %+v", p)
		}
	case <-time.After(time.Second):
		t.Fatal("webhook was not delivered")
	}
}

func TestWebhookSkippedForFreeTier(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	s, sender := proService(false)
	s.deliver(context.Background(), testCampaign(srv.URL, true), testEntry())

	if called {
		t.Fatal("webhook must not fire for free-tier owners")
	}
	if len(sender.inputs) != 0 {
		t.Fatal("autoresponder must not fire for free-tier owners")
	}
}

func TestConfirmationEmail(t *testing.T) {
	s, sender := proService(true)
	s.deliver(context.Background(), testCampaign("", true), testEntry())

	if len(sender.inputs) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.inputs))
	}
	in := sender.inputs[0]
	if in.Destination.ToAddresses[0] != "alice@example.com" {
		t.Fatalf("wrong recipient: %v", in.Destination.ToAddresses)
	}
	if *in.FromEmailAddress != "PrizeJet <hello@prizejet.example>" {
		t.Fatalf("wrong sender: %s", *in.FromEmailAddress)
	}
	body := *in.Content.Simple.Body.Text.Data
	want := "https://prizejet.example/c/summer-a1b2c?ref=a1b2c3d4"
	if !strings.Contains(body, want) {
		t.Fatalf("body missing referral link %s:\n%s", want, body)
	}
}

func TestAutoresponderOffByDefault(t *testing.T) {
	s, sender := proService(true)
	s.deliver(context.Background(), testCampaign("", false), testEntry())
	if len(sender.inputs) != 0 {
		t.Fatal("autoresponder disabled on the campaign must not send")
	}
}

func TestReferralLinkWithoutSlug(t *testing.T) {
	s, _ := proService(true)
	c := testCampaign("", false)
	c.Slug = nil
	if link := s.ReferralLink(c, testEntry()); link != "" {
		t.Fatalf("draft campaign should have no referral link, got %s", link)
	}
}
