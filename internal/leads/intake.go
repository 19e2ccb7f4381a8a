package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ironbridge-it/website-api/internal/observability/metrics"
	"github.com/ironbridge-it/website-api/internal/ratelimit"
	"github.com/ironbridge-it/website-api/pkg/logging"
)

// State is where a submission ended up.
type State string

const (
	StateReceived    State = "received"
	StateRateLimited State = "rate_limited"
	StateInvalid     State = "invalid"
	StatePersisted   State = "persisted"
	StateStoreFailed State = "store_failed"
	// StateMalformed means the body could not be decoded at all.
	StateMalformed State = "malformed"
)

// Result is the single terminal outcome of a submission.
type Result struct {
	State  State
	LeadID string
	Lead   *Lead
	Err    error
}

// Accepted reports whether the lead was stored.
func (r Result) Accepted() bool {
	return r.State == StatePersisted
}

// Notifier is told about leads after they are stored.
type Notifier interface {
	LeadCreated(ctx context.Context, lead *Lead) error
}

// DefaultStoreTimeout bounds a single lead insert.
const DefaultStoreTimeout = 5 * time.Second

// DefaultNotifyTimeout bounds how long a stored lead's response waits on the notifier.
const DefaultNotifyTimeout = 2 * time.Second

// Intake runs a contact form submission through rate limiting, validation
// and persistence, in that order.
type Intake struct {
	limiter      ratelimit.Limiter
	repo         Repository
	notifier     Notifier
	metrics      *metrics.IntakeMetrics
	logger       *logging.Logger
	storeTimeout  time.Duration
	notifyTimeout time.Duration
	now          func() time.Time
}

// IntakeOption customizes an Intake.
type IntakeOption func(*Intake)

// WithNotifier publishes stored leads to n.
func WithNotifier(n Notifier) IntakeOption {
	return func(i *Intake) { i.notifier = n }
}

// WithMetrics records submission outcomes.
func WithMetrics(m *metrics.IntakeMetrics) IntakeOption {
	return func(i *Intake) { i.metrics = m }
}

// WithNotifyTimeout overrides DefaultNotifyTimeout.
func WithNotifyTimeout(d time.Duration) IntakeOption {
	return func(i *Intake) {
		if d > 0 {
			i.notifyTimeout = d
		}
	}
}

// WithStoreTimeout overrides DefaultStoreTimeout.
func WithStoreTimeout(d time.Duration) IntakeOption {
	return func(i *Intake) {
		if d > 0 {
			i.storeTimeout = d
		}
	}
}

// NewIntake wires the submission pipeline.
func NewIntake(limiter ratelimit.Limiter, repo Repository, logger *logging.Logger, opts ...IntakeOption) *Intake {
	if limiter == nil {
		panic("leads: rate limiter required")
	}
	if repo == nil {
		panic("leads: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	i := &Intake{
		limiter:      limiter,
		repo:         repo,
		logger:       logger,
		storeTimeout:  DefaultStoreTimeout,
		notifyTimeout: DefaultNotifyTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Submit processes an already decoded request.
func (i *Intake) Submit(ctx context.Context, clientKey string, req SubmitRequest) Result {
	return i.run(ctx, clientKey, func() (SubmitRequest, error) { return req, nil })
}

// SubmitJSON decodes body only after the caller has passed the rate limit.
func (i *Intake) SubmitJSON(ctx context.Context, clientKey string, body io.Reader) Result {
	return i.run(ctx, clientKey, func() (SubmitRequest, error) {
		var req SubmitRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			return SubmitRequest{}, fmt.Errorf("leads: decode request: %w", err)
		}
		return req, nil
	})
}

func (i *Intake) run(ctx context.Context, clientKey string, payload func() (SubmitRequest, error)) Result {
	if clientKey == "" {
		clientKey = ratelimit.UnknownClient
	}

	if !i.limiter.Allow(ctx, clientKey) {
		i.logger.Warn("contact submission rate limited", "client", clientKey)
		return i.finish(Result{State: StateRateLimited})
	}

	req, err := payload()
	if err != nil {
		i.logger.Error("contact submission unreadable", "error", err, "client", clientKey)
		return i.finish(Result{State: StateMalformed, Err: err})
	}

	lead, err := Validate(req)
	if err != nil {
		return i.finish(Result{State: StateInvalid, Err: err})
	}
	lead.IPAddress = clientKey

	storeCtx, cancel := context.WithTimeout(ctx, i.storeTimeout)
	start := i.now()
	id, err := i.repo.Insert(storeCtx, lead)
	i.metrics.ObserveStoreLatency(i.now().Sub(start).Seconds())
	cancel()
	if err != nil {
		if !errors.Is(err, ErrStore) {
			err = fmt.Errorf("%w: %w", ErrStore, err)
		}
		i.logger.Error("failed to store lead", "error", err, "client", clientKey)
		return i.finish(Result{State: StateStoreFailed, Err: err})
	}
	lead.ID = id

	i.logger.Info("lead created", "id", id, "service", serviceLabel(lead.Service))
	i.metrics.ObserveService(serviceLabel(lead.Service))
	i.notify(ctx, lead)

	return i.finish(Result{State: StatePersisted, LeadID: id, Lead: lead})
}

// notify waits at most notifyTimeout. A notifier that ignores its context keeps
// running in the background, but the submission result is returned regardless.
func (i *Intake) notify(ctx context.Context, lead *Lead) {
	if i.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), i.notifyTimeout)
	defer cancel()
	snapshot := *lead

	done := make(chan error, 1)
	go func() {
		done <- i.notifier.LeadCreated(ctx, &snapshot)
	}()

	select {
	case err := <-done:
		if err != nil {
			i.logger.Error("failed to publish lead event", "error", err, "lead_id", lead.ID)
		}
	case <-ctx.Done():
		i.logger.Error("lead event publish timed out", "lead_id", lead.ID, "timeout", i.notifyTimeout.String())
	}
}

func (i *Intake) finish(res Result) Result {
	i.metrics.ObserveSubmission(string(res.State))
	return res
}

func serviceLabel(s *Service) string {
	switch {
	case s == nil:
		return "none"
	case s.Known():
		return string(*s)
	default:
		return "other"
	}
}
