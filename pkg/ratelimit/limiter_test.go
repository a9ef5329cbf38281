package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPacerAllow(t *testing.T) {
	p := NewPacer(50 * time.Millisecond)

	assert.True(t, p.Allow(), "first request should be allowed")
	assert.False(t, p.Allow(), "second immediate request should be denied")

	time.Sleep(60 * time.Millisecond)
	assert.True(t, p.Allow(), "request after the interval should be allowed")
}

func TestPacerWait(t *testing.T) {
	p := NewPacer(50 * time.Millisecond)

	start := time.Now()
	p.Wait()
	assert.Less(t, time.Since(start), 20*time.Millisecond, "first Wait should not block")

	start = time.Now()
	p.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond, "second Wait should enforce the interval")
}

func TestPacerZeroInterval(t *testing.T) {
	p := NewPacer(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		p.Wait()
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestPacerReset(t *testing.T) {
	p := NewPacer(time.Hour)
	p.Wait()
	p.Reset()

	start := time.Now()
	p.Wait()
	assert.Less(t, time.Since(start), 20*time.Millisecond, "Wait after Reset should not block")
}

func TestTokenBucketAllow(t *testing.T) {
	tb := NewTokenBucket(3, time.Hour)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "request %d within capacity should be allowed", i+1)
	}
	assert.False(t, tb.Allow(), "request beyond capacity should be denied")
}

func TestTokenBucketRefill(t *testing.T) {
	tb := NewTokenBucket(1, 50*time.Millisecond)

	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	time.Sleep(60 * time.Millisecond)
	assert.True(t, tb.Allow(), "bucket should refill after the period")
}

func TestTokenBucketReset(t *testing.T) {
	tb := NewTokenBucket(1, time.Hour)

	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	tb.Reset()
	assert.True(t, tb.Allow())
}
