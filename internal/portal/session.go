package portal

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/make-ready-tech/oppintel/internal/config"
	"github.com/make-ready-tech/oppintel/internal/fetcher"
	"github.com/make-ready-tech/oppintel/internal/model"
)

// Session is a warmed-up request context against the topics portal. The
// fetcher's cookie jar holds whatever state the warm-up handed out; the
// session owns it for the duration of one run and must not be shared across
// concurrent runs against the same portal.
type Session struct {
	client *fetcher.Client
	cfg    config.PortalConfig
	warmed bool
	sleep  func(context.Context, time.Duration)
}

// NewSession creates an un-warmed session. Bootstrap must be called before
// the search endpoint is trusted.
func NewSession(client *fetcher.Client, cfg config.PortalConfig) *Session {
	return &Session{client: client, cfg: cfg, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Bootstrap performs the fixed warm-up sequence: load the portal landing
// page, pause, then call the low-risk component dropdown endpoint, pause
// again. Every step is best-effort. Portals are observed to sometimes reject
// the warm-up yet still accept subsequent real requests, so failures are
// recorded on the trail as warnings and the sequence continues.
func (s *Session) Bootstrap(ctx context.Context, trail *model.Trail) {
	log := zap.L().With(zap.String("component", "portal.session"))
	delay := time.Duration(s.cfg.WarmupDelayMS) * time.Millisecond

	trail.Logf("initializing session with %s", s.cfg.BaseURL)

	status, err := s.client.Touch(ctx, s.cfg.BaseURL+"/topics-app/", 30*time.Second)
	if err != nil {
		trail.Warnf("warm-up: landing page failed: %v", err)
		log.Warn("warm-up landing page failed", zap.Error(err))
	} else {
		trail.Logf("warm-up: landing page loaded (status %d)", status)
	}
	s.sleep(ctx, delay)

	status, err = s.client.Touch(ctx, s.cfg.BaseURL+"/core/api/public/dropdown/components", 30*time.Second)
	if err != nil {
		trail.Warnf("warm-up: components endpoint failed: %v", err)
		log.Warn("warm-up components endpoint failed", zap.Error(err))
	} else {
		trail.Logf("warm-up: components endpoint called (status %d)", status)
	}
	s.sleep(ctx, delay)

	// Settle before the first real search call.
	s.sleep(ctx, time.Duration(s.cfg.PostWarmupDelayMS)*time.Millisecond)

	s.warmed = true
	trail.Logf("session initialized, ready for search")
}

// Warmed reports whether Bootstrap has completed.
func (s *Session) Warmed() bool {
	return s.warmed
}

// Client returns the underlying HTTP client carrying the session state.
func (s *Session) Client() *fetcher.Client {
	return s.client
}
