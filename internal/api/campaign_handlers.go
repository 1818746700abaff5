package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/prizejet/prizejet/internal/analytics"
	"github.com/prizejet/prizejet/internal/domain"
	"github.com/prizejet/prizejet/internal/pkg/httputil"
	"github.com/prizejet/prizejet/internal/service/campaign"
	"github.com/prizejet/prizejet/internal/service/entry"
)

func page(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	p, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if p < 1 {
		p = 1
	}
	return limit, (p - 1) * limit
}

// ListCampaigns returns the owner's campaigns, optionally filtered by
// stored status.
func (h *Handlers) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	list, total, err := h.campaigns.List(r.Context(), h.owner(r), campaign.ListFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if list == nil {
		list = []domain.Campaign{}
	}
	httputil.OK(w, map[string]interface{}{
		"campaigns": list,
		"total":     total,
	})
}

// CreateCampaign creates a draft campaign.
func (h *Handlers) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var input campaign.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}

	c, err := h.campaigns.Create(r.Context(), h.owner(r), h.ownerIsPro(r), input)
	switch {
	case err == nil:
		httputil.Created(w, c)
	case errors.Is(err, campaign.ErrProRequired):
		httputil.ErrorCode(w, http.StatusForbidden, "pro_required", err.Error())
	default:
		httputil.BadRequest(w, err.Error())
	}
}

// GetCampaign returns one owned campaign.
func (h *Handlers) GetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.Get(r.Context(), h.owner(r), chi.URLParam(r, "id"))
	if isNotFound(err) {
		httputil.NotFound(w, "campaign not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, c)
}

// UpdateCampaign applies a full edit to an owned campaign.
func (h *Handlers) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var input campaign.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}

	c, err := h.campaigns.Update(r.Context(), h.owner(r), chi.URLParam(r, "id"), h.ownerIsPro(r), input)
	switch {
	case err == nil:
		h.invalidate(r, c)
		httputil.OK(w, c)
	case isNotFound(err):
		httputil.NotFound(w, "campaign not found")
	case errors.Is(err, campaign.ErrProRequired):
		httputil.ErrorCode(w, http.StatusForbidden, "pro_required", err.Error())
	default:
		httputil.BadRequest(w, err.Error())
	}
}

// DeleteCampaign removes a draft.
func (h *Handlers) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	err := h.campaigns.Delete(r.Context(), h.owner(r), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		httputil.NoContent(w)
	case isNotFound(err):
		httputil.NotFound(w, "campaign not found")
	case errors.Is(err, campaign.ErrNotDraft):
		httputil.ErrorCode(w, http.StatusConflict, "not_draft", "published campaigns cannot be deleted")
	default:
		httputil.InternalError(w, err)
	}
}

// PublishCampaign makes a draft live under its generated slug.
func (h *Handlers) PublishCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.Publish(r.Context(), h.owner(r), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		httputil.OK(w, c)
	case isNotFound(err):
		httputil.NotFound(w, "campaign not found")
	default:
		httputil.InternalError(w, err)
	}
}

// CampaignDashboard aggregates the owner analytics in one call: summary,
// 14-day daily stats, top referrers, and the leaderboard.
func (h *Handlers) CampaignDashboard(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.Get(r.Context(), h.owner(r), chi.URLParam(r, "id"))
	if isNotFound(err) {
		httputil.NotFound(w, "campaign not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	entries, err := h.entries.ListAll(r.Context(), c.ID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, map[string]interface{}{
		"campaign":      c,
		"status":        c.EffectiveStatus(h.now()),
		"summary":       analytics.Summarize(entries),
		"daily":         analytics.DailyStats(entries, h.now()),
		"top_referrers": analytics.TopReferrers(entries, 5),
		"leaderboard":   analytics.Leaderboard(entries, 20),
	})
}

// ListEntries returns a page of entries for the owner dashboard table.
func (h *Handlers) ListEntries(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.Get(r.Context(), h.owner(r), chi.URLParam(r, "id"))
	if isNotFound(err) {
		httputil.NotFound(w, "campaign not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	limit, offset := page(r)
	list, total, err := h.entries.List(r.Context(), c.ID, entry.ListFilter{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if list == nil {
		list = []domain.Entry{}
	}
	httputil.OK(w, map[string]interface{}{
		"entries": list,
		"total":   total,
	})
}

// ExportEntries streams the full entry list as a CSV attachment.
func (h *Handlers) ExportEntries(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.Get(r.Context(), h.owner(r), chi.URLParam(r, "id"))
	if isNotFound(err) {
		httputil.NotFound(w, "campaign not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	entries, err := h.entries.ListAll(r.Context(), c.ID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", c.Title+"-entries.csv"))
	if err := analytics.WriteCSV(w, entries); err != nil {
		// Headers are gone; nothing to do but log via the recoverer path.
		return
	}
}

// UploadFeaturedImage stores a landing-page hero image and records its URL.
func (h *Handlers) UploadFeaturedImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		httputil.ErrorCode(w, http.StatusServiceUnavailable, "storage_disabled", "image storage is not configured")
		return
	}

	c, err := h.campaigns.Get(r.Context(), h.owner(r), chi.URLParam(r, "id"))
	if isNotFound(err) {
		httputil.NotFound(w, "campaign not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		httputil.BadRequest(w, "multipart field 'image' is required")
		return
	}
	defer file.Close()

	url, err := h.images.UploadFeaturedImage(r.Context(), c.ID, file)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	if err := h.campaigns.SetFeaturedImage(r.Context(), h.owner(r), c.ID, url); err != nil {
		httputil.InternalError(w, err)
		return
	}
	h.invalidate(r, c)
	httputil.OK(w, map[string]string{"featured_image": url})
}

// invalidate drops the cached landing page after an owner mutation.
func (h *Handlers) invalidate(r *http.Request, c *domain.Campaign) {
	if c != nil && c.Slug != nil {
		h.cache.Invalidate(r.Context(), *c.Slug)
	}
}
