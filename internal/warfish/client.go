// Package warfish loads game snapshots from the Warfish REST service.
package warfish

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	methodGetDetails = "warfish.tables.getDetails"
	methodGetState   = "warfish.tables.getState"
)

var tracer = otel.Tracer("github.com/freeeve/hordestats/internal/warfish")

// Options tunes the HTTP behaviour of a Client.
type Options struct {
	Timeout           time.Duration
	MaxTries          uint          // attempts per call, including the first
	RequestsPerSecond float64       // outbound throttle; <= 0 disables it
	Burst             int
	RetryInterval     time.Duration // initial backoff; defaults to the backoff package default
}

// Client calls the Warfish REST API. The game id is passed on every call;
// the client holds no per-game state.
type Client struct {
	baseURL  string
	httpC    *http.Client
	limiter  *rate.Limiter
	maxTries uint
	retryIvl time.Duration
}

// NewClient creates a Client for the given Warfish base URL (e.g. http://warfish.net/war).
func NewClient(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxTries == 0 {
		opts.MaxTries = 1
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpC:    &http.Client{Timeout: opts.Timeout},
		limiter:  rate.NewLimiter(limit, opts.Burst),
		maxTries: opts.MaxTries,
		retryIvl: opts.RetryInterval,
	}
}

// GetDetails fetches the static map: territory names and continents.
func (c *Client) GetDetails(ctx context.Context, gameID string) (*DetailsResponse, error) {
	var rsp DetailsResponse
	if err := c.call(ctx, methodGetDetails, gameID, "map,continents", &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// GetState fetches the live board: players and territory ownership.
func (c *Client) GetState(ctx context.Context, gameID string) (*StateResponse, error) {
	var rsp StateResponse
	if err := c.call(ctx, methodGetState, gameID, "players,board", &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

type enveloped interface {
	envelope() *Envelope
}

func (c *Client) call(ctx context.Context, method, gameID, sections string, out enveloped) error {
	ctx, span := tracer.Start(ctx, method)
	defer span.End()
	span.SetAttributes(attribute.String("warfish.gid", gameID))

	q := url.Values{}
	q.Set("_method", method)
	q.Set("gid", gameID)
	q.Set("sections", sections)
	u := c.baseURL + "/services/rest?" + q.Encode()

	op := func() (struct{}, error) {
		return struct{}{}, c.fetch(ctx, method, u, out)
	}
	eb := backoff.NewExponentialBackOff()
	if c.retryIvl > 0 {
		eb.InitialInterval = c.retryIvl
	}
	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Str("method", method).Str("gameId", gameID).Dur("retryIn", next).Msg("Warfish request failed, retrying")
		}),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	env := out.envelope()
	if env.Stat != "ok" {
		apiErr := &APIError{Method: method, Code: "unknown", Msg: "unexpected response status " + env.Stat}
		if env.Err != nil {
			apiErr.Code = env.Err.Code
			apiErr.Msg = env.Err.Msg
		}
		span.SetStatus(codes.Error, apiErr.Error())
		return apiErr
	}
	return nil
}

// fetch performs one attempt. Errors not worth retrying are wrapped in
// backoff.Permanent.
func (c *Client) fetch(ctx context.Context, method, u string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return backoff.Permanent(fmt.Errorf("warfish throttle: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/xml")

	start := time.Now()
	resp, err := c.httpC.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return fmt.Errorf("warfish %s: %w", method, err)
	}
	defer resp.Body.Close()

	log.Debug().Str("method", method).Int("status", resp.StatusCode).Dur("durationMs", time.Since(start)).Msg("Warfish response")

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		statusErr := &StatusError{Method: method, Code: resp.StatusCode}
		if statusErr.Temporary() {
			return statusErr
		}
		return backoff.Permanent(statusErr)
	}

	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("%w: decode %s: %v", ErrMalformedResponse, method, err))
	}
	return nil
}

// IsNotFound reports whether err means Warfish refused to serve the game.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return true
	}
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound
}
