// Package controller drives one client's portal session: it loads the
// dashboard, refreshes it on a timer or on demand, and forwards review
// decisions before reloading.
//
// The dashboard held by the controller is only ever replaced wholesale.
// At most one fetch runs at a time; a manual or periodic refresh that finds
// a fetch in flight is dropped, while a refetch that follows a review
// decision waits for its turn.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/verticalview/client-portal/internal/core/domain"
	"github.com/verticalview/client-portal/internal/core/ports"
)

type State int

const (
	StateLoggedOut State = iota
	StateLoading
	StateDashboard
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateDashboard:
		return "dashboard"
	default:
		return "logged_out"
	}
}

const DefaultRefreshInterval = 60 * time.Second

// View is a consistent copy of the controller state.
type View struct {
	State       State
	ClientID    string
	Dashboard   *domain.Dashboard
	Err         error
	LastRefresh time.Time
}

type Option func(*Controller)

// WithListener receives every state change. It runs on the goroutine that
// caused the change and must not call back into the controller.
func WithListener(fn func(View)) Option {
	return func(c *Controller) { c.listener = fn }
}

func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type Controller struct {
	dashboards ports.DashboardLoader
	reviews    ports.ReviewService
	interval   time.Duration
	logger     *slog.Logger
	listener   func(View)
	now        func() time.Time

	// inFlight holds one token while a fetch runs.
	inFlight chan struct{}

	mu   sync.RWMutex
	view View

	loopMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(dashboards ports.DashboardLoader, reviews ports.ReviewService, opts ...Option) *Controller {
	c := &Controller{
		dashboards: dashboards,
		reviews:    reviews,
		interval:   DefaultRefreshInterval,
		logger:     slog.Default(),
		now:        time.Now,
		inFlight:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MagicLinkClientID extracts the client id from a portal link or a bare
// query string. The "client" parameter wins over "ref"; ids that do not look
// like record ids are ignored.
func MagicLinkClientID(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[i+1:]
	}
	if i := strings.Index(raw, "#"); i >= 0 {
		raw = raw[:i]
	}
	query, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}
	id := strings.TrimSpace(query.Get("client"))
	if id == "" {
		id = strings.TrimSpace(query.Get("ref"))
	}
	if !strings.HasPrefix(id, "rec") {
		return ""
	}
	return id
}

// Bootstrap logs in from a magic link. It reports false when the link
// carries no usable client id.
func (c *Controller) Bootstrap(ctx context.Context, rawURLOrQuery string) (bool, error) {
	id := MagicLinkClientID(rawURLOrQuery)
	if id == "" {
		return false, nil
	}
	return true, c.Login(ctx, id)
}

func (c *Controller) Login(ctx context.Context, clientID string) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return domain.NewError(domain.ErrInvalidInput, "login", "client id is required")
	}
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	c.update(func(v *View) { v.ClientID = clientID })
	return c.fetch(ctx, true)
}

// Refresh reloads the dashboard on demand. It reports false without doing
// anything when no client is loaded or a fetch is already running.
func (c *Controller) Refresh(ctx context.Context) (bool, error) {
	if c.Snapshot().ClientID == "" {
		return false, nil
	}
	if !c.tryAcquire() {
		c.logger.Debug("refresh_dropped", "reason", "fetch in flight")
		return false, nil
	}
	defer c.release()
	return true, c.fetch(ctx, true)
}

// Start runs the silent periodic refresh until ctx ends or Stop is called.
// Calling Start twice has no effect.
func (c *Controller) Start(ctx context.Context) {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()
	if c.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				c.refreshSilently(loopCtx)
			}
		}
	}()
}

// Stop halts the periodic refresh and waits for the timer goroutine to exit.
// A fetch already running is not aborted.
func (c *Controller) Stop() {
	c.loopMu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.loopMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Controller) Validate(ctx context.Context, videoID string) error {
	if _, err := c.reviews.Validate(ctx, videoID); err != nil {
		return err
	}
	return c.refetchAfterReview(ctx)
}

func (c *Controller) RequestRevision(ctx context.Context, videoID, comment string) error {
	if _, err := c.reviews.RequestRevision(ctx, videoID, comment); err != nil {
		return err
	}
	return c.refetchAfterReview(ctx)
}

func (c *Controller) Snapshot() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

func (c *Controller) refetchAfterReview(ctx context.Context) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()
	if err := c.fetch(ctx, true); err != nil {
		return fmt.Errorf("reload after review: %w", err)
	}
	return nil
}

func (c *Controller) refreshSilently(ctx context.Context) {
	if c.Snapshot().State != StateDashboard {
		return
	}
	if !c.tryAcquire() {
		return
	}
	defer c.release()
	if err := c.fetch(ctx, false); err != nil {
		c.logger.Warn("periodic_refresh_failed", "client_id", c.Snapshot().ClientID, "error", err)
	}
}

// fetch must be called with the in-flight token held. A surfaced failure
// logs the client out and drops the dashboard; a silent one keeps it.
func (c *Controller) fetch(ctx context.Context, surface bool) error {
	var clientID string
	var previous State
	c.update(func(v *View) {
		clientID = v.ClientID
		previous = v.State
		v.State = StateLoading
	})

	dashboard, err := c.dashboards.LoadByID(ctx, clientID)
	if err != nil {
		c.update(func(v *View) {
			if surface {
				v.State = StateLoggedOut
				v.Dashboard = nil
				v.Err = err
				return
			}
			v.State = previous
		})
		return err
	}

	c.update(func(v *View) {
		v.State = StateDashboard
		v.Dashboard = dashboard
		v.Err = nil
		v.LastRefresh = c.now()
	})
	return nil
}

func (c *Controller) update(mutate func(*View)) {
	c.mu.Lock()
	mutate(&c.view)
	view := c.view
	c.mu.Unlock()

	if c.listener != nil {
		c.listener(view)
	}
}

func (c *Controller) tryAcquire() bool {
	select {
	case c.inFlight <- struct{}{}:
		return true
	default:
		return false
	}
}

func (c *Controller) acquire(ctx context.Context) error {
	select {
	case c.inFlight <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) release() {
	<-c.inFlight
}
