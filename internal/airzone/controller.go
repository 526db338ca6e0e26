package airzone

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the controller's lifecycle phase, exposed for logging and
// metrics.
type State string

const (
	// StateAwaitingOnline means the gateway has not yet announced itself.
	StateAwaitingOnline State = "awaiting_online"

	// StateIdle means the gateway is online and the model is fresh.
	StateIdle State = "idle"

	// StatePolling means a full status request is in flight.
	StatePolling State = "polling"

	// StatePollFailed means the last poll attempt did not complete.
	StatePollFailed State = "poll_failed"
)

// Controller tracks the gateway's announced availability and decides,
// per update cycle, whether the device model is fresh enough to skip a
// full status poll.
//
// The model is considered fresh only while all three hold: a first full
// snapshot has been applied, the gateway is online, and data has been
// received within the poll timeout. Event deltas refresh the timestamp,
// so a chatty gateway is never polled and a silent one is re-polled at
// most once per timeout window.
type Controller struct {
	client  *Client
	store   *Store
	timeout time.Duration
	logger  Logger

	// now is the freshness clock, overridable in tests.
	now func() time.Time

	mu         sync.Mutex
	online     bool
	onlineCh   chan struct{} // closed while online, replaced when offline
	lastUpdate time.Time
	state      State
}

// NewController creates a controller in the awaiting-online state.
//
// timeout is both the freshness window and the budget for a single
// status poll.
func NewController(client *Client, store *Store, timeout time.Duration, logger Logger) *Controller {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Controller{
		client:   client,
		store:    store,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
		onlineCh: make(chan struct{}),
		state:    StateAwaitingOnline,
	}
}

// SetOnline records the gateway's announced availability. Transitioning
// to online releases any WaitOnline callers; transitioning to offline
// re-arms them.
func (c *Controller) SetOnline(online bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if online == c.online {
		return
	}
	c.online = online

	if online {
		close(c.onlineCh)
		if c.state == StateAwaitingOnline {
			c.state = StateIdle
		}
		metricGatewayOnline.Set(1)
		c.logger.Info("gateway online")
	} else {
		c.onlineCh = make(chan struct{})
		c.state = StateAwaitingOnline
		metricGatewayOnline.Set(0)
		c.logger.Warn("gateway offline")
	}
}

// Online reports the gateway's last announced availability.
func (c *Controller) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// State returns the controller's current lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// WaitOnline blocks until the gateway announces itself online or the
// context is cancelled.
func (c *Controller) WaitOnline(ctx context.Context) error {
	c.mu.Lock()
	ch := c.onlineCh
	c.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MarkUpdated records that gateway data arrived at ts. Called for both
// event deltas and full status responses; either resets the freshness
// window.
func (c *Controller) MarkUpdated(ts time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts.After(c.lastUpdate) {
		c.lastUpdate = ts
	}
}

// fresh reports whether the model can be trusted without polling.
func (c *Controller) fresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Initialized() &&
		c.online &&
		c.now().Sub(c.lastUpdate) <= c.timeout
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Update runs one freshness cycle: it returns ErrOffline while the
// gateway has not announced itself, skips the poll entirely while the
// model is fresh, and otherwise requests a full status snapshot.
//
// A poll that produces no matching response within the timeout returns
// an error matching ErrTimeout. Transport failures, and responses that
// leave the store without a device inventory, match ErrPollFailed.
// Either way the controller is ready for the next cycle.
func (c *Controller) Update(ctx context.Context) error {
	if !c.Online() {
		return ErrOffline
	}

	if c.fresh() {
		c.logger.Debug("model fresh, skipping poll")
		return nil
	}

	c.setState(StatePolling)
	c.logger.Debug("polling full status")

	pollCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.client.Invoke(pollCtx, CmdGetStatus, nil); err != nil {
		c.setState(StatePollFailed)
		if errors.Is(err, ErrTimeout) {
			metricPolls.WithLabelValues("timeout").Inc()
			return err
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		metricPolls.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %w", ErrPollFailed, err)
	}

	// The response path applies the snapshot and stamps the freshness
	// clock before Invoke returns. A matched response whose body could
	// not be decoded leaves the store untouched; a cycle that ends with
	// no model at all is a failed poll, not a success.
	if !c.store.Initialized() {
		c.setState(StatePollFailed)
		metricPolls.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: response carried no device inventory", ErrPollFailed)
	}

	metricPolls.WithLabelValues("ok").Inc()
	c.setState(StateIdle)
	return nil
}
