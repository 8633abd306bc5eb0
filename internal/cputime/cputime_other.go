//go:build !linux

package cputime

import "time"

// Thread returns zero on platforms without per-thread CPU accounting.
func Thread() time.Duration { return 0 }

// Supported reports whether per-thread CPU time is available on this platform.
func Supported() bool { return false }
