// Package timeouts defines shared timeout constants used by the commands.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// ScrapeRequest caps a single page fetch made by the scraper.
const ScrapeRequest = 20 * time.Second

// ScrapePageDelay spaces consecutive page fetches against the same site.
const ScrapePageDelay = 2 * time.Second

// TelemetryShutdown caps the flush of pending spans on exit.
const TelemetryShutdown = 5 * time.Second
