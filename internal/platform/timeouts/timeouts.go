// Package timeouts defines shared timeout constants for the gradebook
// commands and stores.
package timeouts

import "time"

// StoreBusy bounds how long SQLite waits on a locked database before failing.
const StoreBusy = 5 * time.Second

// TelemetryShutdown limits how long span export may block process exit.
const TelemetryShutdown = 5 * time.Second
