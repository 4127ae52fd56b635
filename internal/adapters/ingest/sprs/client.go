package sprs

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hansard/internal/core/transcript"
	perr "hansard/internal/platform/errors"
	"hansard/internal/platform/logger"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUA        = "hansard-ingest"
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
	maxBody          = 64 << 20
)

// Fetcher returns the raw report JSON for one sitting day
type Fetcher interface {
	Fetch(ctx context.Context, day time.Time) ([]byte, error)
}

// Options configures the HTTPFetcher
type Options struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RetryBase  time.Duration
}

// HTTPFetcher GETs reports straight from the parliament site
type HTTPFetcher struct {
	Client *http.Client
	opts   Options
	log    logger.Logger
	sleep  func(context.Context, time.Duration) error
}

// NewHTTPFetcher fills unset options with defaults
func NewHTTPFetcher(o Options) *HTTPFetcher {
	if o.BaseURL == "" {
		o.BaseURL = transcript.BaseURL
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &HTTPFetcher{
		Client: &http.Client{Timeout: o.Timeout},
		opts:   o,
		log:    *logger.Named("sprs"),
		sleep:  sleepCtx,
	}
}

// URL is the report URL for day under this fetcher's base
func (f *HTTPFetcher) URL(day time.Time) string {
	return f.opts.BaseURL + "?sittingDate=" + day.Format(transcript.SittingDateLayout)
}

// Fetch downloads the report, retrying transport errors, 429 and 5xx
func (f *HTTPFetcher) Fetch(ctx context.Context, day time.Time) ([]byte, error) {
	resp, err := f.do(ctx, day, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	return readBody(resp.Body)
}

// do issues the GET with optional conditional headers. The caller owns the body of a
// 200 or 304 response
func (f *HTTPFetcher) do(ctx context.Context, day time.Time, hdr http.Header) (*http.Response, error) {
	url := f.URL(day)
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "sprs new request failed")
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		for k, vs := range hdr {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		start := time.Now()
		resp, err := f.Client.Do(req)
		if err != nil {
			if ctx.Err() != nil || attempt >= f.opts.MaxRetries {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "sprs get %s", day.Format(transcript.DayLayout))
			}
			if serr := f.backoff(ctx, attempt, 0, "transport error"); serr != nil {
				return nil, serr
			}
			continue
		}

		f.log.Debug().
			Str("sitting_date", day.Format(transcript.DayLayout)).
			Int("status", resp.StatusCode).
			Int("attempt", attempt).
			Dur("latency", time.Since(start)).
			Msg("sprs http response")

		switch resp.StatusCode {
		case http.StatusOK, http.StatusNotModified:
			return resp, nil
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			_ = drainAndClose(resp.Body)
			if attempt >= f.opts.MaxRetries {
				code := perr.ErrorCodeUnavailable
				if resp.StatusCode == http.StatusTooManyRequests {
					code = perr.ErrorCodeTooManyRequests
				}
				return nil, perr.Newf(code, "sprs status %d for %s", resp.StatusCode, url)
			}
			if serr := f.backoff(ctx, attempt, retryAfter(resp.Header), "transient status"); serr != nil {
				return nil, serr
			}
		case http.StatusNotFound:
			_ = drainAndClose(resp.Body)
			return nil, perr.NotFoundf("sprs no report for %s", day.Format(transcript.DayLayout))
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, perr.Newf(perr.ErrorCodeUnknown, "sprs unexpected status %d body %s", resp.StatusCode, string(body))
		}
	}
}

// backoff waits RetryBase doubled per attempt, capped at 30s, or the server's Retry-After
func (f *HTTPFetcher) backoff(ctx context.Context, attempt int, after time.Duration, why string) error {
	d := after
	if d <= 0 {
		d = f.opts.RetryBase << uint(attempt)
		if d > 30*time.Second {
			d = 30 * time.Second
		}
	}
	f.log.Warn().Dur("retry_in", d).Int("attempt", attempt).Msg("sprs " + why + " retrying")
	return f.sleep(ctx, d)
}

func retryAfter(h http.Header) time.Duration {
	s := strings.TrimSpace(h.Get("Retry-After"))
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func readBody(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxBody))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "sprs read body")
	}
	return b, nil
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
