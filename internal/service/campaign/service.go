package campaign

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prizejet/prizejet/internal/domain"
)

// publishRetries bounds how often Publish regenerates a slug after a
// uniqueness conflict before giving up.
const publishRetries = 3

// Service implements campaign business logic. All public methods are safe
// for concurrent use if the underlying repository is concurrency-safe.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a campaign service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateInput holds the fields for creating or editing a campaign.
type CreateInput struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	StartDate    time.Time           `json:"start_date"`
	EndDate      time.Time           `json:"end_date"`
	PrizeTitle   string              `json:"prize_title"`
	PrizeDesc    string              `json:"prize_description"`
	NumWinners   int                 `json:"num_winners"`
	EntryOptions domain.EntryOptions `json:"entry_options"`
	PointsConfig domain.PointsConfig `json:"points_config"`
	ProFeatures  domain.ProFeatures  `json:"pro_features"`
}

func (in *CreateInput) validate(isPro bool) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(in.PrizeTitle) == "" {
		return fmt.Errorf("prize title is required")
	}
	if !in.EndDate.After(in.StartDate) {
		return fmt.Errorf("end date must be after start date")
	}
	if !isPro && (in.ProFeatures.Autoresponder.Enabled || in.ProFeatures.WebhookURL != "") {
		return ErrProRequired
	}
	return nil
}

// Get returns a single campaign owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*domain.Campaign, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// GetBySlug resolves a published campaign for the public landing page.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Campaign, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// List returns campaigns owned by ownerID.
func (s *Service) List(ctx context.Context, ownerID string, f ListFilter) ([]domain.Campaign, int, error) {
	return s.repo.List(ctx, ownerID, f)
}

// Create validates and persists a new campaign in draft status. Pro-gated
// integrations are rejected with ErrProRequired unless isPro is set.
func (s *Service) Create(ctx context.Context, ownerID string, isPro bool, input CreateInput) (*domain.Campaign, error) {
	if err := input.validate(isPro); err != nil {
		return nil, err
	}

	c := &domain.Campaign{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Status:       domain.CampaignDraft,
		PrizeTitle:   strings.TrimSpace(input.PrizeTitle),
		PrizeDesc:    input.PrizeDesc,
		NumWinners:   input.NumWinners,
		EntryOptions: input.EntryOptions,
		PointsConfig: input.PointsConfig,
		ProFeatures:  input.ProFeatures,
	}
	// Entering always requires an email; the opt-in is not optional.
	c.EntryOptions.EmailOptIn = true
	if c.NumWinners < 1 {
		c.NumWinners = 1
	}

	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

// Update replaces the editable fields of a campaign. Published campaigns
// keep their slug and status; only the configuration changes.
func (s *Service) Update(ctx context.Context, ownerID, id string, isPro bool, input CreateInput) (*domain.Campaign, error) {
	if err := input.validate(isPro); err != nil {
		return nil, err
	}

	c, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	c.Title = strings.TrimSpace(input.Title)
	c.Description = input.Description
	c.StartDate = input.StartDate
	c.EndDate = input.EndDate
	c.PrizeTitle = strings.TrimSpace(input.PrizeTitle)
	c.PrizeDesc = input.PrizeDesc
	c.NumWinners = input.NumWinners
	if c.NumWinners < 1 {
		c.NumWinners = 1
	}
	c.EntryOptions = input.EntryOptions
	c.EntryOptions.EmailOptIn = true
	c.PointsConfig = input.PointsConfig
	c.ProFeatures = input.ProFeatures

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Publish transitions a draft campaign to active and assigns its public
// slug. Publishing an already-active campaign is a no-op that returns the
// campaign unchanged; an existing slug is never regenerated. There is no
// precondition on dates: a campaign published after its end date simply
// presents as ended to visitors.
func (s *Service) Publish(ctx context.Context, ownerID, id string) (*domain.Campaign, error) {
	c, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CampaignActive {
		return c, nil
	}

	slug := ""
	if c.Slug != nil && *c.Slug != "" {
		slug = *c.Slug
	}

	for attempt := 0; ; attempt++ {
		if slug == "" {
			slug = Slugify(c.Title) + "-" + randomBase36(5)
		}
		err = s.repo.Publish(ctx, ownerID, id, slug)
		if err == nil {
			break
		}
		if errors.Is(err, ErrSlugTaken) && attempt < publishRetries {
			log.Printf("[campaign.Service] slug %q taken, regenerating", slug)
			slug = ""
			continue
		}
		return nil, fmt.Errorf("publish campaign: %w", err)
	}

	c.Status = domain.CampaignActive
	c.Slug = &slug
	return c, nil
}

// Delete removes a draft campaign. Published campaigns cannot be deleted.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// SetFeaturedImage records the hosted image URL for a campaign.
func (s *Service) SetFeaturedImage(ctx context.Context, ownerID, id, url string) error {
	return s.repo.SetFeaturedImage(ctx, ownerID, id, url)
}

var nonWord = regexp.MustCompile(`[^\w\s-]`)
var spaces = regexp.MustCompile(`\s+`)

// Slugify derives a URL-safe slug fragment from a campaign title.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = nonWord.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "campaign"
	}
	return s
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// randomBase36 returns n random base-36 characters from crypto/rand.
func randomBase36(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(base36)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand never fails on supported platforms; fall back
			// to a fixed character rather than panic in a request path.
			b[i] = 'x'
			continue
		}
		b[i] = base36[idx.Int64()]
	}
	return string(b)
}
