package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prizejet/prizejet/internal/assets"
	"github.com/prizejet/prizejet/internal/auth"
	"github.com/prizejet/prizejet/internal/cache"
	"github.com/prizejet/prizejet/internal/domain"
	"github.com/prizejet/prizejet/internal/pkg/httputil"
	"github.com/prizejet/prizejet/internal/ratelimit"
	"github.com/prizejet/prizejet/internal/service/campaign"
	"github.com/prizejet/prizejet/internal/service/entry"
)

// devOwner attributes all owner requests when auth is disabled.
const devOwner = "dev@localhost"

// Handlers holds the services the HTTP layer dispatches into.
type Handlers struct {
	campaigns *campaign.Service
	entries   *entry.Service
	cache     *cache.Cache
	limiter   *ratelimit.Limiter
	images    *assets.Store
	auth      *auth.Manager

	now func() time.Time
}

// NewHandlers creates the handler set. cache, limiter, images and auth
// may be nil; the corresponding features degrade gracefully.
func NewHandlers(campaigns *campaign.Service, entries *entry.Service, c *cache.Cache, l *ratelimit.Limiter, images *assets.Store, am *auth.Manager) *Handlers {
	if c == nil {
		c = cache.New(nil, 0)
	}
	if l == nil {
		l = ratelimit.New(nil, 0)
	}
	return &Handlers{
		campaigns: campaigns,
		entries:   entries,
		cache:     c,
		limiter:   l,
		images:    images,
		auth:      am,
		now:       time.Now,
	}
}

// HealthCheck reports process liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}

// owner returns the account email the request acts on behalf of.
func (h *Handlers) owner(r *http.Request) string {
	if h.auth == nil {
		return devOwner
	}
	if s := h.auth.GetSession(r); s != nil {
		return s.Email
	}
	return devOwner
}

// ownerIsPro reports whether the request's owner has a pro subscription.
func (h *Handlers) ownerIsPro(r *http.Request) bool {
	if h.auth == nil {
		return true // local development unlocks everything
	}
	if s := h.auth.GetSession(r); s != nil {
		return s.Pro
	}
	return false
}

// activeCampaign resolves a public slug through the cache.
func (h *Handlers) activeCampaign(ctx context.Context, slug string) (*domain.Campaign, bool, error) {
	if c := h.cache.GetCampaign(ctx, slug); c != nil {
		return c, true, nil
	}
	c, err := h.campaigns.GetBySlug(ctx, slug)
	if err != nil {
		return nil, false, err
	}
	h.cache.SetCampaign(ctx, c)
	return c, false, nil
}

// clientIP strips the port off RemoteAddr. The RealIP middleware has
// already resolved forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func isNotFound(err error) bool {
	return errors.Is(err, campaign.ErrNotFound) || errors.Is(err, entry.ErrNotFound)
}
