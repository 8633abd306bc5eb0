package cputime

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThread(t *testing.T) {
	if !Supported() {
		assert.Zero(t, Thread())
		return
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	start := Thread()
	x := 0.0
	for i := 0; i < 20_000_000; i++ {
		x += float64(i%7) * 1e-9
	}
	assert.Greater(t, x, 0.0)
	assert.GreaterOrEqual(t, Thread(), start)
}
