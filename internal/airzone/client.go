package airzone

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openhvac/airzone-mqtt-bridge/internal/infrastructure/mqtt"
)

// Publisher is the outbound transport surface the client needs.
// Satisfied by *mqtt.Client; kept narrow for testing.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Client turns the gateway's request/response pub-sub exchanges into
// synchronous-looking calls.
//
// Only one request may be in flight at a time: concurrent callers
// serialize behind invokeMu, and the pending correlation slot acts as
// natural backpressure on outbound polling. A timed-out Invoke clears
// the pending slot and releases the exclusive section before returning,
// so a subsequent call can always proceed.
type Client struct {
	pub     Publisher
	topics  mqtt.Topics
	qos     byte
	timeout time.Duration
	logger  Logger

	// now is the clock used for correlation ids, overridable in tests.
	now func() time.Time

	// invokeMu serializes invokes: the exclusive section spans publish
	// through response or timeout.
	invokeMu sync.Mutex

	// pendingMu guards the pending correlation slot.
	pendingMu sync.Mutex
	pendingID string
	pendingCh chan Envelope
}

// NewClient creates a correlation client publishing through pub.
//
// timeout bounds how long an Invoke waits for a matching response when
// the caller's context carries no earlier deadline.
func NewClient(pub Publisher, topics mqtt.Topics, qos byte, timeout time.Duration, logger Logger) *Client {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Client{
		pub:     pub,
		topics:  topics,
		qos:     qos,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// Invoke publishes a request envelope for command and blocks until a
// response with a matching correlation id arrives, the timeout elapses,
// or ctx is cancelled.
//
// On timeout (either the client's own budget or a ctx deadline) the
// returned error matches ErrTimeout and the client is immediately ready
// to accept a new Invoke.
func (c *Client) Invoke(ctx context.Context, command string, body any) (Envelope, error) {
	c.invokeMu.Lock()
	defer c.invokeMu.Unlock()

	reqID := requestID(command, c.now())

	var rawBody json.RawMessage
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Envelope{}, fmt.Errorf("encoding %s body: %w", command, err)
		}
		rawBody = data
	}

	env := Envelope{
		Headers: Headers{
			Cmd:         command,
			Destination: c.topics.AirzoneResponse(command),
			RequestID:   reqID,
		},
		Body: rawBody,
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return Envelope{}, fmt.Errorf("encoding %s envelope: %w", command, err)
	}

	respCh := make(chan Envelope, 1)
	c.setPending(reqID, respCh)
	defer c.clearPending()

	if err := c.pub.Publish(c.topics.AirzoneInvoke(), payload, c.qos, false); err != nil {
		return Envelope{}, fmt.Errorf("publishing %s request: %w", command, err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case resp := <-respCh:
		return resp, nil
	case <-timer.C:
		return Envelope{}, fmt.Errorf("%w: no response to %s within %v", ErrTimeout, command, c.timeout)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Envelope{}, fmt.Errorf("%w: %s: %w", ErrTimeout, command, ctx.Err())
		}
		return Envelope{}, ctx.Err()
	}
}

// HandleResponse offers an inbound response envelope to the pending
// waiter. A response whose correlation id does not match the pending
// one is logged as an error and discarded whole: it does not unblock
// the waiter and apply is never called for it.
//
// For a matching response, apply (if non-nil) runs before the waiter
// is released, so side effects such as store merges are visible to the
// Invoke caller when it returns.
//
// Returns true if the response matched the in-flight request.
func (c *Client) HandleResponse(env Envelope, apply func(Envelope)) bool {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	if c.pendingCh == nil || env.Headers.RequestID != c.pendingID {
		c.logger.Error("unexpected response",
			"req_id", env.Headers.RequestID,
			"pending", c.pendingID,
		)
		return false
	}

	if apply != nil {
		apply(env)
	}

	// Buffered channel: the waiter may have timed out between the id
	// check and this send, in which case the envelope is dropped with
	// the channel.
	select {
	case c.pendingCh <- env:
	default:
	}
	return true
}

func (c *Client) setPending(reqID string, ch chan Envelope) {
	c.pendingMu.Lock()
	c.pendingID = reqID
	c.pendingCh = ch
	c.pendingMu.Unlock()
}

func (c *Client) clearPending() {
	c.pendingMu.Lock()
	c.pendingID = ""
	c.pendingCh = nil
	c.pendingMu.Unlock()
}
