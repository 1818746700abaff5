package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/prizejet/prizejet/internal/domain"
	"github.com/prizejet/prizejet/internal/metrics"
	"github.com/prizejet/prizejet/internal/pkg/httputil"
	"github.com/prizejet/prizejet/internal/service/entry"
)

// publicCampaignView is the landing-page projection of a campaign. Owner
// identity and integration settings never leave the server.
type publicCampaignView struct {
	Slug          string               `json:"slug"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	PrizeTitle    string               `json:"prize_title"`
	PrizeDesc     string               `json:"prize_description"`
	NumWinners    int                  `json:"num_winners"`
	FeaturedImage string               `json:"featured_image,omitempty"`
	StartDate     time.Time            `json:"start_date"`
	EndDate       time.Time            `json:"end_date"`
	Status        string               `json:"status"`
	Referrals     bool                 `json:"referral_enabled"`
	BonusActions  []domain.BonusAction `json:"bonus_actions,omitempty"`
	TotalEntries  int                  `json:"total_entries"`
	Ref           string               `json:"ref,omitempty"`
}

// publicEntryView is what a participant sees about their own entry.
type publicEntryView struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Points       int       `json:"points"`
	ReferralCode string    `json:"referral_code"`
	Referred     bool      `json:"referred"`
	BonusActions []string  `json:"completed_actions"`
	CreatedAt    time.Time `json:"created_at"`
}

func entryView(e *domain.Entry) publicEntryView {
	actions := e.BonusActions
	if actions == nil {
		actions = []string{}
	}
	return publicEntryView{
		ID:           e.ID,
		Name:         e.Name,
		Points:       e.Points,
		ReferralCode: e.ReferralCode,
		Referred:     e.IsReferred(),
		BonusActions: actions,
		CreatedAt:    e.CreatedAt,
	}
}

// PublicCampaign renders the landing-page payload. An incoming ?ref= code
// is echoed back so the client can hold it until submission.
func (h *Handlers) PublicCampaign(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	c, cached, err := h.activeCampaign(r.Context(), slug)
	if isNotFound(err) {
		httputil.NotFound(w, "campaign not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	total, err := h.entries.Count(r.Context(), c.ID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	label := "miss"
	if cached {
		label = "hit"
	}
	metrics.LandingPageViews.WithLabelValues(label).Inc()

	view := publicCampaignView{
		Slug:          slug,
		Title:         c.Title,
		Description:   c.Description,
		PrizeTitle:    c.PrizeTitle,
		PrizeDesc:     c.PrizeDesc,
		NumWinners:    c.NumWinners,
		FeaturedImage: c.FeaturedImage,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
		Status:        string(c.EffectiveStatus(h.now())),
		Referrals:     c.EntryOptions.ReferralEnabled,
		BonusActions:  c.EntryOptions.BonusActions,
		TotalEntries:  total,
		Ref:           r.URL.Query().Get("ref"),
	}
	httputil.OK(w, view)
}

type submitEntryRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	ReferralCode string `json:"referral_code"`
}

// SubmitEntry admits a participant into the campaign behind the slug.
func (h *Handlers) SubmitEntry(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	slug := chi.URLParam(r, "slug")

	c, _, err := h.activeCampaign(r.Context(), slug)
	if isNotFound(err) {
		httputil.NotFound(w, "campaign not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	ip := clientIP(r)
	if !h.limiter.Allow(r.Context(), c.ID, ip) {
		metrics.RecordEntrySubmit("rate_limited", time.Since(start).Seconds())
		httputil.ErrorCode(w, http.StatusTooManyRequests, "rate_limited", "too many entries from this address, try again shortly")
		return
	}

	var req submitEntryRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	e, err := h.entries.Submit(r.Context(), c, entry.SubmitInput{
		Name:         req.Name,
		Email:        req.Email,
		ReferralCode: req.ReferralCode,
		IPAddress:    ip,
	})
	switch {
	case err == nil:
		metrics.RecordEntrySubmit("accepted", time.Since(start).Seconds())
		metrics.RecordEntryAccepted(e.IsReferred())
		if e.IsReferred() && c.EntryOptions.ReferralEnabled {
			metrics.ReferralCreditsTotal.Inc()
		}
		httputil.Created(w, entryView(e))
	case errors.Is(err, entry.ErrCampaignNotActive):
		metrics.RecordEntrySubmit("rejected", time.Since(start).Seconds())
		httputil.ErrorCode(w, http.StatusGone, "campaign_ended", "this giveaway has ended")
	case errors.Is(err, entry.ErrDuplicateEntry):
		metrics.RecordEntrySubmit("duplicate", time.Since(start).Seconds())
		httputil.ErrorCode(w, http.StatusConflict, "already_entered", "this email has already entered")
	case errors.Is(err, entry.ErrValidation):
		metrics.RecordEntrySubmit("rejected", time.Since(start).Seconds())
		httputil.BadRequest(w, "name and email are required")
	default:
		metrics.RecordEntrySubmit("error", time.Since(start).Seconds())
		httputil.InternalError(w, err)
	}
}

// PublicEntry recognizes a returning participant from their stored entry
// ID and returns their current standing.
func (h *Handlers) PublicEntry(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	entryID := chi.URLParam(r, "entryID")

	c, _, err := h.activeCampaign(r.Context(), slug)
	if isNotFound(err) {
		httputil.NotFound(w, "campaign not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	e, err := h.entries.Get(r.Context(), c.ID, entryID)
	if isNotFound(err) {
		httputil.NotFound(w, "entry not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, entryView(e))
}

// CompleteBonusAction records a bonus-action completion for an entry.
// Repeating a completed action is a no-op that returns current standing.
func (h *Handlers) CompleteBonusAction(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	entryID := chi.URLParam(r, "entryID")
	actionID := chi.URLParam(r, "actionID")

	c, _, err := h.activeCampaign(r.Context(), slug)
	if isNotFound(err) {
		httputil.NotFound(w, "campaign not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	e, err := h.entries.CompleteBonusAction(r.Context(), c, entryID, actionID)
	switch {
	case err == nil:
		httputil.OK(w, entryView(e))
	case errors.Is(err, entry.ErrUnknownAction):
		httputil.BadRequest(w, "unknown bonus action")
	case isNotFound(err):
		httputil.NotFound(w, "entry not found")
	default:
		httputil.InternalError(w, err)
	}
}
