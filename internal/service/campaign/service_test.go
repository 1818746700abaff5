package campaign_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prizejet/prizejet/internal/domain"
	"github.com/prizejet/prizejet/internal/service/campaign"
)

// memRepo is an in-memory campaign repository for unit testing.
type memRepo struct {
	mu        sync.Mutex
	campaigns map[string]*domain.Campaign // keyed by id
}

func newMemRepo() *memRepo {
	return &memRepo{campaigns: make(map[string]*domain.Campaign)}
}

func (m *memRepo) Get(_ context.Context, ownerID, id string) (*domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok || c.OwnerID != ownerID {
		return nil, campaign.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) GetBySlug(_ context.Context, slug string) (*domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.campaigns {
		if c.Status == domain.CampaignActive && c.Slug != nil && *c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, campaign.ErrNotFound
}

func (m *memRepo) List(_ context.Context, ownerID string, f campaign.ListFilter) ([]domain.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Campaign
	for _, c := range m.campaigns {
		if c.OwnerID != ownerID {
			continue
		}
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *memRepo) Create(_ context.Context, c *domain.Campaign) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		return "", fmt.Errorf("id required")
	}
	cp := *c
	m.campaigns[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memRepo) Update(_ context.Context, c *domain.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.campaigns[c.ID]
	if !ok || cur.OwnerID != c.OwnerID {
		return campaign.ErrNotFound
	}
	cp := *c
	cp.Status = cur.Status
	cp.Slug = cur.Slug
	m.campaigns[c.ID] = &cp
	return nil
}

func (m *memRepo) Publish(_ context.Context, ownerID, id, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.campaigns {
		if c.ID != id && c.Slug != nil && *c.Slug == slug {
			return campaign.ErrSlugTaken
		}
	}
	c, ok := m.campaigns[id]
	if !ok || c.OwnerID != ownerID {
		return campaign.ErrNotFound
	}
	c.Status = domain.CampaignActive
	if c.Slug == nil || *c.Slug == "" {
		c.Slug = &slug
	}
	return nil
}

func (m *memRepo) Delete(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok || c.OwnerID != ownerID {
		return campaign.ErrNotFound
	}
	if c.Status != domain.CampaignDraft {
		return campaign.ErrNotDraft
	}
	delete(m.campaigns, id)
	return nil
}

func (m *memRepo) SetFeaturedImage(_ context.Context, ownerID, id, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok || c.OwnerID != ownerID {
		return campaign.ErrNotFound
	}
	c.FeaturedImage = url
	return nil
}

const testOwner = "owner-1"

func validInput() campaign.CreateInput {
	return campaign.CreateInput{
		Title:      "Summer Giveaway",
		PrizeTitle: "A Bicycle",
		StartDate:  time.Now(),
		EndDate:    time.Now().Add(14 * 24 * time.Hour),
		EntryOptions: domain.EntryOptions{
			ReferralEnabled: true,
		},
		PointsConfig: domain.PointsConfig{ReferralPoints: 10},
	}
}

func TestCreate(t *testing.T) {
	svc := campaign.NewService(newMemRepo())
	c, err := svc.Create(context.Background(), testOwner, false, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Status != domain.CampaignDraft {
		t.Fatalf("expected draft, got %s", c.Status)
	}
	if !c.EntryOptions.EmailOptIn {
		t.Fatal("email opt-in must always be forced on")
	}
	if c.NumWinners != 1 {
		t.Fatalf("expected num_winners default 1, got %d", c.NumWinners)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := campaign.NewService(newMemRepo())
	_, err := svc.Create(context.Background(), testOwner, false, campaign.CreateInput{})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCreateProGating(t *testing.T) {
	svc := campaign.NewService(newMemRepo())
	in := validInput()
	in.ProFeatures.WebhookURL = "https://example.com/hook"

	_, err := svc.Create(context.Background(), testOwner, false, in)
	if err != campaign.ErrProRequired {
		t.Fatalf("expected ErrProRequired, got %v", err)
	}

	if _, err := svc.Create(context.Background(), testOwner, true, in); err != nil {
		t.Fatalf("pro user should pass: %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := campaign.NewService(newMemRepo())
	_, err := svc.Get(context.Background(), testOwner, "nonexistent")
	if err != campaign.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPublishGeneratesSlug(t *testing.T) {
	repo := newMemRepo()
	svc := campaign.NewService(repo)

	c, _ := svc.Create(context.Background(), testOwner, false, validInput())

	pub, err := svc.Publish(context.Background(), testOwner, c.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if pub.Status != domain.CampaignActive {
		t.Fatalf("expected active, got %s", pub.Status)
	}
	if pub.Slug == nil || !strings.HasPrefix(*pub.Slug, "summer-giveaway-") {
		t.Fatalf("expected slug derived from title, got %v", pub.Slug)
	}
}

func TestPublishTwiceKeepsSlug(t *testing.T) {
	repo := newMemRepo()
	svc := campaign.NewService(repo)

	c, _ := svc.Create(context.Background(), testOwner, false, validInput())
	first, err := svc.Publish(context.Background(), testOwner, c.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	second, err := svc.Publish(context.Background(), testOwner, c.ID)
	if err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if *first.Slug != *second.Slug {
		t.Fatalf("slug changed on republish: %q -> %q", *first.Slug, *second.Slug)
	}
}

func TestPublishAfterEndDate(t *testing.T) {
	repo := newMemRepo()
	svc := campaign.NewService(repo)

	in := validInput()
	in.StartDate = time.Now().Add(-48 * time.Hour)
	in.EndDate = time.Now().Add(-24 * time.Hour)
	c, err := svc.Create(context.Background(), testOwner, false, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// No date precondition on publish; the campaign just presents as ended.
	pub, err := svc.Publish(context.Background(), testOwner, c.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := pub.EffectiveStatus(time.Now()); got != domain.CampaignEnded {
		t.Fatalf("expected effective ended, got %s", got)
	}
	if pub.AcceptsEntries(time.Now()) {
		t.Fatal("ended campaign must not accept entries")
	}
}

func TestDraftNotVisibleBySlug(t *testing.T) {
	repo := newMemRepo()
	svc := campaign.NewService(repo)

	c, _ := svc.Create(context.Background(), testOwner, false, validInput())
	slug := "sneak-peek"
	repo.mu.Lock()
	repo.campaigns[c.ID].Slug = &slug
	repo.mu.Unlock()

	if _, err := svc.GetBySlug(context.Background(), slug); err != campaign.ErrNotFound {
		t.Fatalf("draft slug must not resolve, got %v", err)
	}
}

func TestDeletePublished(t *testing.T) {
	repo := newMemRepo()
	svc := campaign.NewService(repo)

	c, _ := svc.Create(context.Background(), testOwner, false, validInput())
	svc.Publish(context.Background(), testOwner, c.ID)

	if err := svc.Delete(context.Background(), testOwner, c.ID); err != campaign.ErrNotDraft {
		t.Fatalf("expected ErrNotDraft, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Summer Giveaway":        "summer-giveaway",
		"Win a  FREE  iPhone!!!": "win-a-free-iphone",
		"  ":                     "campaign",
	}
	for in, want := range cases {
		if got := campaign.Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
