package entry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prizejet/prizejet/internal/domain"
	"github.com/prizejet/prizejet/internal/pkg/logger"
)

// codeLength is the referral code length in base-36 characters.
const codeLength = 8

// createRetries bounds how often Submit regenerates a referral code after
// a storage-level collision before failing the submission.
const createRetries = 5

// Notifier receives post-admission side effects (autoresponder email,
// webhook delivery). Implementations must not block the submission path.
type Notifier interface {
	EntryCreated(campaign *domain.Campaign, e *domain.Entry)
}

// Service implements the entry and referral ledger.
type Service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
}

// NewService creates an entry service backed by the given repository.
// notifier may be nil when no side channels are configured.
func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier, now: time.Now}
}

// SubmitInput is a candidate participant for a campaign.
type SubmitInput struct {
	Name         string
	Email        string
	ReferralCode string
	IPAddress    string
}

// Submit admits a participant into a campaign.
//
// Preconditions are checked in order: the campaign must be accepting
// entries, name and email must be non-empty after trimming, and the email
// must not already be entered (case-insensitive, enforced by the storage
// uniqueness constraint so concurrent submissions cannot both land).
//
// A supplied referral code is resolved within the same campaign; an
// unknown or stale code silently downgrades the entry to direct. When a
// referrer is resolved and the campaign has referrals enabled, the
// referrer's points are incremented atomically by the campaign's
// configured referral award.
func (s *Service) Submit(ctx context.Context, c *domain.Campaign, in SubmitInput) (*domain.Entry, error) {
	if !c.AcceptsEntries(s.now()) {
		return nil, ErrCampaignNotActive
	}

	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" {
		return nil, ErrValidation
	}

	var referrer *domain.Entry
	if code := strings.TrimSpace(in.ReferralCode); code != "" {
		ref, err := s.repo.GetByReferralCode(ctx, c.ID, code)
		switch {
		case err == nil:
			referrer = ref
		case errors.Is(err, ErrNotFound):
			// Stale or invalid codes are ignored, not rejected.
		default:
			return nil, fmt.Errorf("resolve referrer: %w", err)
		}
	}

	e := &domain.Entry{
		ID:         uuid.New().String(),
		CampaignID: c.ID,
		Email:      email,
		Name:       name,
		Points:     1,
		IPAddress:  in.IPAddress,
		CreatedAt:  s.now(),
	}
	if referrer != nil {
		id := referrer.ID
		e.ReferrerID = &id
	}

	for attempt := 0; ; attempt++ {
		e.ReferralCode = newReferralCode()
		err := s.repo.Create(ctx, e)
		if err == nil {
			break
		}
		if errors.Is(err, ErrCodeCollision) && attempt < createRetries {
			logger.Warn("referral code collision, regenerating",
				"campaign_id", c.ID, "attempt", attempt+1)
			continue
		}
		if errors.Is(err, ErrDuplicateEntry) {
			return nil, ErrDuplicateEntry
		}
		return nil, fmt.Errorf("create entry: %w", err)
	}

	if referrer != nil && c.EntryOptions.ReferralEnabled {
		award := c.PointsConfig.ReferralPoints
		if award > 0 {
			if err := s.repo.AddPoints(ctx, referrer.ID, award); err != nil {
				// The entry is already admitted; surface the lost credit
				// loudly rather than failing the participant.
				logger.Error("referral credit failed",
					"referrer_id", referrer.ID, "entry_id", e.ID, "err", err)
			}
		}
	}

	logger.Info("entry admitted",
		"campaign_id", c.ID, "entry_id", e.ID,
		"email", e.Email, "referred", e.IsReferred())

	if s.notifier != nil {
		s.notifier.EntryCreated(c, e)
	}
	return e, nil
}

// Get returns an entry, verifying it belongs to the given campaign. Used
// by the landing page to recognize returning participants from their
// client-stored entry ID.
func (s *Service) Get(ctx context.Context, campaignID, id string) (*domain.Entry, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.CampaignID != campaignID {
		return nil, ErrNotFound
	}
	return e, nil
}

// List returns a page of entries for the owner dashboard.
func (s *Service) List(ctx context.Context, campaignID string, f ListFilter) ([]domain.Entry, int, error) {
	return s.repo.List(ctx, campaignID, f)
}

// ListAll returns the full entry collection for analytics.
func (s *Service) ListAll(ctx context.Context, campaignID string) ([]domain.Entry, error) {
	return s.repo.ListAll(ctx, campaignID)
}

// Count returns the total entry count for a campaign.
func (s *Service) Count(ctx context.Context, campaignID string) (int, error) {
	return s.repo.Count(ctx, campaignID)
}

// CompleteBonusAction marks a bonus action complete for an entry and
// credits its points. The operation is idempotent: completing the same
// action twice credits once and returns the entry unchanged.
func (s *Service) CompleteBonusAction(ctx context.Context, c *domain.Campaign, entryID, actionID string) (*domain.Entry, error) {
	action, ok := c.FindBonusAction(actionID)
	if !ok {
		return nil, ErrUnknownAction
	}

	e, err := s.repo.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if e.CampaignID != c.ID {
		return nil, ErrNotFound
	}

	credited, err := s.repo.CompleteBonusAction(ctx, entryID, actionID, action.Points)
	if err != nil {
		return nil, fmt.Errorf("complete bonus action: %w", err)
	}
	if credited {
		logger.Info("bonus action completed",
			"entry_id", entryID, "action_id", actionID, "points", action.Points)
	}
	return s.repo.Get(ctx, entryID)
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// newReferralCode returns a short random base-36 token. Uniqueness is
// enforced by the storage layer; Submit retries on collision.
func newReferralCode() string {
	b := make([]byte, codeLength)
	max := big.NewInt(int64(len(base36)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			b[i] = '0'
			continue
		}
		b[i] = base36[idx.Int64()]
	}
	return string(b)
}
