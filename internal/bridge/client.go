package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

// CommandObserver receives the outcome of every invocation, for metrics.
type CommandObserver interface {
	ObserveCommand(command string, err error)
}

// Client invokes named backend commands over HTTP. Every command is a POST
// of a JSON envelope to {base}/invoke; the backend answers with either a
// result payload or an error message. The client treats the backend as a
// black box: only the decoded record shapes matter.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	observer   CommandObserver
	reads      singleflight.Group
}

// New constructs a bridge client. observer may be nil.
func New(baseURL string, timeout time.Duration, logger *slog.Logger, observer CommandObserver) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		observer:   observer,
	}
}

type invocation struct {
	ID      string `json:"id"`
	Command string `json:"command"`
	Args    any    `json:"args,omitempty"`
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// invoke posts one command and decodes the result payload into dest.
// Transport failures and 5xx map to ErrBridgeUnavailable, 4xx to
// ErrCommandRejected carrying the backend's message.
func (c *Client) invoke(ctx context.Context, command string, args any, dest any) error {
	err := c.doInvoke(ctx, command, args, dest)
	if c.observer != nil {
		c.observer.ObserveCommand(command, err)
	}
	return err
}

func (c *Client) doInvoke(ctx context.Context, command string, args any, dest any) error {
	payload, err := json.Marshal(invocation{ID: uuid.NewString(), Command: command, Args: args})
	if err != nil {
		return fmt.Errorf("encode %s: %w", command, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/invoke", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("bridge unreachable", slog.String("command", command), slog.Any("error", err))
		return fmt.Errorf("%w: %s", shared.ErrBridgeUnavailable, command)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s response", shared.ErrBridgeUnavailable, command)
	}
	if resp.StatusCode >= 500 {
		c.logger.Warn("bridge failure", slog.String("command", command), slog.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: %s returned %d", shared.ErrBridgeUnavailable, command, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: decode %s response", shared.ErrBridgeUnavailable, command)
	}
	if resp.StatusCode >= 400 {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%w: %s: %s", shared.ErrCommandRejected, command, msg)
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, dest); err != nil {
		return fmt.Errorf("decode %s result: %w", command, err)
	}
	return nil
}

// list invokes a read command, collapsing concurrent invocations with
// identical arguments into one backend round trip. Reads are idempotent so
// every waiter can share the same payload.
func (c *Client) list(ctx context.Context, command string, args any, dest any) error {
	key := command
	if args != nil {
		if raw, err := json.Marshal(args); err == nil {
			key += ":" + string(raw)
		}
	}
	raw, err, _ := c.reads.Do(key, func() (any, error) {
		var payload json.RawMessage
		if err := c.invoke(ctx, command, args, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw.(json.RawMessage), dest)
}
