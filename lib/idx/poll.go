package idx

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/segmentio/okta-idx/lib/idx/types"
)

type PollState int

const (
	PollIdle PollState = iota
	PollPolling
	PollSucceeded
	PollFailed
	PollCancelled
)

func (s PollState) String() string {
	switch s {
	case PollIdle:
		return "idle"
	case PollPolling:
		return "polling"
	case PollSucceeded:
		return "succeeded"
	case PollFailed:
		return "failed"
	case PollCancelled:
		return "cancelled"
	}
	return "unknown"
}

// PollOptions tune every PollingCapability created by a Flow.
type PollOptions struct {
	// DelayFirstRequest waits one interval before the first request.
	DelayFirstRequest bool
	// IgnoreLostConnection keeps polling through types.ErrConnectionLost.
	IgnoreLostConnection bool
	// DefaultInterval is used when the server sends no refresh.
	DefaultInterval time.Duration
	// MaxDuration bounds a whole Proceed call. 0 means no limit.
	MaxDuration time.Duration
	// MaxRetries bounds consecutive lost-connection retries. 0 means no
	// limit.
	MaxRetries int
}

func (o PollOptions) ApplyDefaults() PollOptions {
	if o.DefaultInterval == 0 {
		o.DefaultInterval = defaultPollInterval
	}
	return o
}

// PollingCapability repeatedly submits a poll remediation until the
// server moves on. At most one loop runs per capability.
type PollingCapability struct {
	authenticator *Authenticator
	remediation   *Remediation
	keys          []string
	flow          *Flow

	mu         sync.Mutex
	state      PollState
	generation uint64
	cancel     context.CancelFunc
}

func newPollingCapability(a *Authenticator, rem *Remediation, keys []string, f *Flow) *PollingCapability {
	if keys == nil {
		keys = a.paths
	}
	return &PollingCapability{
		authenticator: a,
		remediation:   rem,
		keys:          keys,
		flow:          f,
	}
}

func (p *PollingCapability) Remediation() *Remediation { return p.remediation }

func (p *PollingCapability) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Proceed polls until the server returns a response without a matching
// poll step, which is returned. A previous loop on p is cancelled first.
func (p *PollingCapability) Proceed(ctx context.Context) (*Response, error) {
	opts := p.flow.pollOptions()
	started := time.Now()

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.generation++
	gen := p.generation
	var cancel context.CancelFunc
	if opts.MaxDuration > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.MaxDuration)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	p.cancel = cancel
	p.state = PollPolling
	p.mu.Unlock()
	defer cancel()

	p.flow.trackPoll(p)
	defer p.flow.untrackPoll(p)

	resp, err := p.loop(ctx, gen, opts, started)
	p.finish(gen, err)
	return resp, err
}

// Cancel stops the running loop, if any. It is safe to call repeatedly.
func (p *PollingCapability) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.state == PollPolling || p.state == PollIdle {
		p.state = PollCancelled
	}
}

// willProceed stops polling when any other step of the same authenticator
// is submitted.
func (p *PollingCapability) willProceed(r *Remediation) {
	if r.Type.IsPoll() {
		return
	}
	if p.State() == PollPolling {
		p.Cancel()
	}
}

func (p *PollingCapability) active(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation == gen
}

func (p *PollingCapability) finish(gen uint64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation != gen {
		return
	}
	p.cancel = nil
	switch {
	case err == nil:
		p.state = PollSucceeded
	case errors.Is(err, ErrPollCancelled):
		p.state = PollCancelled
	default:
		p.state = PollFailed
	}
}

func (p *PollingCapability) loop(ctx context.Context, gen uint64, opts PollOptions, started time.Time) (*Response, error) {
	lctx := p.flow.logger().WithFields(log.Fields{
		"authenticator": p.authenticator.Kind,
		"remediation":   p.remediation.Name,
	})

	rem := p.remediation
	retries := 0
	for iteration := 0; ; iteration++ {
		wait := rem.Refresh
		if wait == 0 {
			wait = opts.DefaultInterval
		}
		if retries > 0 {
			wait = time.Duration(retries) * wait
		}
		if iteration > 0 || opts.DelayFirstRequest {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, p.interrupted(ctx, gen, opts, started)
			}
		}
		if !p.active(gen) {
			return nil, ErrPollCancelled
		}

		lctx.WithField("iteration", iteration).Debug("polling")
		resp, err := rem.Proceed(ctx, nil)
		if !p.active(gen) {
			return nil, ErrPollCancelled
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, p.interrupted(ctx, gen, opts, started)
			}
			if opts.IgnoreLostConnection && errors.Is(err, types.ErrConnectionLost) &&
				(opts.MaxRetries == 0 || retries < opts.MaxRetries) {
				retries++
				lctx.WithField("retries", retries).Debugf("connection lost; retrying: %s", err)
				continue
			}
			return nil, err
		}
		retries = 0

		next := p.next(resp)
		if next == nil {
			lctx.Debug("polling finished")
			return resp, nil
		}
		rem = next
	}
}

func (p *PollingCapability) interrupted(ctx context.Context, gen uint64, opts PollOptions, started time.Time) error {
	if !p.active(gen) {
		return ErrPollCancelled
	}
	if opts.MaxDuration > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) && time.Since(started) >= opts.MaxDuration {
		return ErrPollTimeout
	}
	return ctx.Err()
}

// next returns the poll step in resp that still concerns the same
// authenticator, or nil when polling is over.
func (p *PollingCapability) next(resp *Response) *Remediation {
	if current := resp.Authenticators.Current(); current != nil && current.poll != nil {
		if current.Kind == p.authenticator.Kind && sharesKey(p.keys, current.paths) {
			return current.poll.remediation
		}
	}
	for _, r := range resp.Remediations.All() {
		if !r.Type.IsPoll() {
			continue
		}
		for _, a := range r.authenticators {
			if a.Kind == p.authenticator.Kind && (sharesKey(p.keys, r.referencePaths()) || sharesKey(p.keys, a.paths)) {
				return r
			}
		}
	}
	return nil
}

func sharesKey(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
