// Package cpost implements the status lookup client for the Czech Post B2C
// ParcelHistory service. One call performs one GET and normalizes the
// response into the newest state event for the parcel.
package cpost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Defaults for the ParcelHistory service.
const (
	DefaultBaseURL  = "https://b2c.cpost.cz/services/ParcelHistory/getDataAsJson"
	DefaultLanguage = "en"
	DefaultTimeout  = 10 * time.Second
)

// Lookup failure sentinels. Transport failures are reported as
// *TransportError instead.
var (
	// ErrInvalidTracking reports a tracking number that is empty after
	// trimming. No network call is made.
	ErrInvalidTracking = errors.New("invalid tracking number")

	// ErrMalformedResponse reports a response whose shape does not contain
	// a usable state event.
	ErrMalformedResponse = errors.New("invalid response structure")
)

// TransportError reports a network-level failure: connection errors,
// timeouts, or an error status with an unparseable body. The underlying
// message is preserved for the per-row error column.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("parcel history request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Result is the normalized outcome of one successful lookup: the text and
// date of the parcel's newest state event. The date is the provider's
// opaque timestamp string and is never reparsed.
type Result struct {
	Status string
	Date   string
}

// Options configures a Client. Zero values select the defaults above.
type Options struct {
	BaseURL  string
	Language string
	Timeout  time.Duration
	Logger   zerolog.Logger

	// HTTPClient overrides the internal client, mainly for tests. When set,
	// Timeout is ignored.
	HTTPClient *http.Client
}

// Client performs parcel status lookups. It holds no per-call state beyond
// a reusable HTTP client, so a single instance serves a whole batch run.
type Client struct {
	baseURL  string
	language string
	httpc    *http.Client
	log      zerolog.Logger
}

// NewClient creates a lookup client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL:  opts.BaseURL,
		language: opts.Language,
		httpc:    httpc,
		log:      opts.Logger.With().Str("component", "cpost").Logger(),
	}
}

// Wire shape of the ParcelHistory response: a top-level array of parcel
// records, each carrying a nested list of state events.
type parcelRecord struct {
	States struct {
		State []stateEvent `json:"state"`
	} `json:"states"`
}

type stateEvent struct {
	Text string `json:"text"`
	Date string `json:"date"`
}

// Lookup fetches the parcel history for trackingNumber and returns its
// newest state event. The event list is not guaranteed to be in
// chronological order, so the event with the maximum date string wins;
// a tie keeps the first-seen maximum. Retry policy is the caller's.
func (c *Client) Lookup(ctx context.Context, trackingNumber string) (Result, error) {
	trimmed := strings.TrimSpace(trackingNumber)
	if trimmed == "" {
		return Result{}, ErrInvalidTracking
	}

	params := url.Values{}
	params.Set("idParcel", trimmed)
	params.Set("language", c.language)
	reqURL := c.baseURL + "?" + params.Encode()

	c.log.Debug().Ctx(ctx).
		Str("tracking_number", trimmed).
		Str("url", reqURL).
		Msg("requesting parcel history")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{}, &TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Error().Ctx(ctx).Err(err).
			Str("tracking_number", trimmed).
			Msg("parcel history request failed")
		return Result{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &TransportError{Err: err}
	}

	var records []parcelRecord
	if err := json.Unmarshal(body, &records); err != nil {
		// The service reports errors as plain-text bodies with an error
		// status; treat those as transport failures, not payload bugs.
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return Result{}, &TransportError{
				Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			}
		}
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	result, ok := newestState(records)
	if !ok {
		c.log.Error().Ctx(ctx).
			Str("tracking_number", trimmed).
			Msg("invalid response structure")
		return Result{}, ErrMalformedResponse
	}

	c.log.Debug().Ctx(ctx).
		Str("tracking_number", trimmed).
		Str("status", result.Status).
		Str("date", result.Date).
		Msg("parcel status resolved")
	return result, nil
}

// newestState selects the state event with the maximum non-empty date from
// the first parcel record. Events without a date never win.
func newestState(records []parcelRecord) (Result, bool) {
	if len(records) == 0 {
		return Result{}, false
	}

	var newest *stateEvent
	states := records[0].States.State
	for i := range states {
		if states[i].Date == "" {
			continue
		}
		if newest == nil || states[i].Date > newest.Date {
			newest = &states[i]
		}
	}
	if newest == nil {
		return Result{}, false
	}
	return Result{Status: newest.Text, Date: newest.Date}, true
}
