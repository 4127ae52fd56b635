package sprs

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"hansard/internal/core/transcript"
	perr "hansard/internal/platform/errors"
)

const (
	lockRetry       = 50 * time.Millisecond
	cleanupInterval = 10 * time.Minute
)

// CachedFetcher serves reports from a local directory, one <DD-MM-YYYY>.json per day plus
// a .meta sidecar. Recent days are revalidated with a conditional GET. Each entry is
// written under a file lock so concurrent ingest processes never interleave writes
type CachedFetcher struct {
	dir             string
	base            *HTTPFetcher
	refreshRecent   time.Duration
	retainMaxAge    time.Duration
	retainMaxBytes  int64
	now             func() time.Time
	lastCleanupUnix atomic.Int64
}

// Entry is a cached report and where it came from
type Entry struct {
	Body []byte
	Path string
	Hit  bool // served from disk without downloading a new body
}

// cacheMeta is the sidecar with the validators we replay
type cacheMeta struct {
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	Size         int64     `json:"size,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
	LastChecked  time.Time `json:"last_checked"`
}

// CachedOption configures the fetcher
type CachedOption func(*CachedFetcher)

// WithRefreshRecent revalidates sitting days within d of now. Reports for a recent
// sitting are sometimes published before they are complete
func WithRefreshRecent(d time.Duration) CachedOption {
	return func(c *CachedFetcher) { c.refreshRecent = d }
}

// WithRetention sets optional age and size retention. Zero disables either dimension
func WithRetention(maxAge time.Duration, maxBytes int64) CachedOption {
	return func(c *CachedFetcher) {
		c.retainMaxAge = maxAge
		c.retainMaxBytes = maxBytes
	}
}

// NewCachedFetcher builds a caching fetcher over base. dir is created when missing
func NewCachedFetcher(dir string, base *HTTPFetcher, opts ...CachedOption) (*CachedFetcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "sprs cache dir %s", dir)
	}
	if base == nil {
		base = NewHTTPFetcher(Options{})
	}
	c := &CachedFetcher{dir: dir, base: base, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Path is where day's report lives on disk
func (c *CachedFetcher) Path(day time.Time) string {
	return filepath.Join(c.dir, day.Format(transcript.SittingDateLayout)+".json")
}

// Fetch implements Fetcher
func (c *CachedFetcher) Fetch(ctx context.Context, day time.Time) ([]byte, error) {
	e, err := c.FetchEntry(ctx, day)
	if err != nil {
		return nil, err
	}
	return e.Body, nil
}

// FetchEntry serves day from disk when present, revalidating recent days, else downloads it
func (c *CachedFetcher) FetchEntry(ctx context.Context, day time.Time) (Entry, error) {
	path := c.Path(day)
	metaPath := path + ".meta"

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return Entry{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "sprs cache lock %s", filepath.Base(path))
	}
	if !ok {
		return Entry{}, perr.Newf(perr.ErrorCodeConflict, "sprs cache lock %s not acquired", filepath.Base(path))
	}
	defer func() { _ = lock.Unlock() }()
	defer c.maybeCleanup()

	if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
		if c.shouldRevalidate(day) {
			if e, err := c.conditionalFetch(ctx, day, path, metaPath); err == nil {
				return e, nil
			}
			// best effort: serve what we have
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return Entry{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "sprs read cache %s", path)
		}
		return Entry{Body: body, Path: path, Hit: true}, nil
	}

	resp, err := c.base.do(ctx, day, nil)
	if err != nil {
		return Entry{}, err
	}
	return c.store(resp, path, metaPath)
}

func (c *CachedFetcher) shouldRevalidate(day time.Time) bool {
	if c.refreshRecent <= 0 {
		return false
	}
	return c.now().Sub(day) <= c.refreshRecent
}

// conditionalFetch replays the stored validators. 304 serves the local file, 200 replaces it
func (c *CachedFetcher) conditionalFetch(ctx context.Context, day time.Time, path, metaPath string) (Entry, error) {
	meta, _ := loadMeta(metaPath)
	hdr := http.Header{}
	if meta != nil {
		if meta.ETag != "" {
			hdr.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			hdr.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := c.base.do(ctx, day, hdr)
	if err != nil {
		return Entry{}, err
	}
	if resp.StatusCode == http.StatusNotModified {
		_ = drainAndClose(resp.Body)
		if meta == nil {
			meta = &cacheMeta{}
		}
		meta.LastChecked = c.now().UTC()
		_ = saveMeta(metaPath, meta)
		body, err := os.ReadFile(path)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Body: body, Path: path, Hit: true}, nil
	}
	return c.store(resp, path, metaPath)
}

// store writes the body atomically through a .part file, then the sidecar
func (c *CachedFetcher) store(resp *http.Response, path, metaPath string) (Entry, error) {
	body, err := readBody(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return Entry{}, err
	}
	if resp.StatusCode == http.StatusNotModified {
		// unconditional GET answered 304; nothing to store
		return Entry{}, perr.Newf(perr.ErrorCodeUnavailable, "sprs unexpected 304 for %s", filepath.Base(path))
	}

	tmp := path + ".part"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		_ = os.Remove(tmp)
		return Entry{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "sprs write cache %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return Entry{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "sprs rename cache %s", path)
	}

	now := c.now().UTC()
	_ = saveMeta(metaPath, &cacheMeta{
		ETag:         strings.TrimSpace(resp.Header.Get("ETag")),
		LastModified: strings.TrimSpace(resp.Header.Get("Last-Modified")),
		Size:         int64(len(body)),
		FetchedAt:    now,
		LastChecked:  now,
	})
	return Entry{Body: body, Path: path}, nil
}

// loadMeta reads a sidecar json file
func loadMeta(path string) (*cacheMeta, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m cacheMeta
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// saveMeta writes the sidecar json atomically
func saveMeta(path string, m *cacheMeta) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	tmp := path + ".part"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// maybeCleanup throttles retention cleanup to once per cleanupInterval
func (c *CachedFetcher) maybeCleanup() {
	if c.retainMaxAge <= 0 && c.retainMaxBytes <= 0 {
		return
	}
	now := c.now().Unix()
	last := c.lastCleanupUnix.Load()
	if last != 0 && now-last < int64(cleanupInterval/time.Second) {
		return
	}
	if !c.lastCleanupUnix.CompareAndSwap(last, now) {
		return
	}
	_ = c.cleanupOnce()
}

// cleanupOnce applies age retention by sitting day, then evicts the oldest days until
// the directory fits retainMaxBytes
func (c *CachedFetcher) cleanupOnce() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	type item struct {
		path string
		size int64
		day  time.Time
	}
	var items []item
	var total int64
	cutoff := c.now().Add(-c.retainMaxAge)

	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		day, err := time.Parse(transcript.SittingDateLayout, strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		full := filepath.Join(c.dir, name)
		fi, err := os.Stat(full)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		if c.retainMaxAge > 0 && day.Before(cutoff) {
			removeEntry(full)
			continue
		}
		items = append(items, item{path: full, size: fi.Size(), day: day})
		total += fi.Size()
	}

	if c.retainMaxBytes > 0 && total > c.retainMaxBytes {
		sort.Slice(items, func(i, j int) bool { return items[i].day.Before(items[j].day) })
		for _, it := range items {
			if total <= c.retainMaxBytes {
				break
			}
			removeEntry(it.path)
			total -= it.size
		}
	}
	return nil
}

func removeEntry(path string) {
	_ = os.Remove(path)
	_ = os.Remove(path + ".meta")
}
