// Package sprs fetches Hansard sitting reports from the parliament reports site.
//
// One report per sitting day, addressed by ?sittingDate=DD-MM-YYYY. HTTPFetcher talks
// to the site directly with retries on 429 and 5xx; CachedFetcher keeps a local copy
// per day, revalidates recent days with ETag and Last-Modified, and serializes writers
// of the same day through a flock so parallel ingest runs can share one cache dir.
package sprs
