package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed reply is kept in the error.
const maxErrorBody = 4096

// statusError is a provider reply with a 4xx or 5xx status.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("provider status %d: %s", e.status, e.body)
}

// transient reports whether repeating the call may succeed: throttling,
// gateway and server failures, and network errors.
func transient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		switch se.status {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var ne net.Error
	return errors.As(err, &ne)
}

// getJSON fetches endpoint into out. Transient failures are repeated up to
// maxAttempts times with a doubling pause; errors never carry the URL.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	attempts := max(c.maxAttempts, 1)
	pause := c.backoff

	for attempt := 1; ; attempt++ {
		err := c.fetch(ctx, endpoint, out)
		if err == nil || attempt == attempts || !transient(err) {
			return redact(err)
		}

		if err := sleep(ctx, pause); err != nil {
			return err
		}
		pause *= 2
	}
}

func (c *Client) fetch(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.session.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
