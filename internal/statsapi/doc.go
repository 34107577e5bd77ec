// Package statsapi fetches per-game highlight content from the MLB Stats
// API. The client serializes outbound calls through a process-wide minimum
// interval, retries transient failures with capped exponential backoff, and
// surfaces retry exhaustion as a typed ExhaustedError so callers can degrade
// to a no-match result instead of failing.
//
// Upstream payload fields the rest of dinger depends on: item id, title,
// description, keyword list, duration, publication timestamp, and playback
// variants. Everything else in the content payload is ignored, and missing
// fields decay to zero values rather than failing the fetch.
package statsapi
