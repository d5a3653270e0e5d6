package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(cfg *Config) (*Limiter, *time.Time) {
	l := NewLimiter(cfg)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return now })
	return l, &now
}

func TestLimiter_Allow(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1", "/companies", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := l.Allow("127.0.0.1", "/companies", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.InDelta(t, 6.0, info.RetryAfter.Seconds(), 0.01)
}

func TestLimiter_Refill(t *testing.T) {
	l, now := newTestLimiter(&Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 60; i++ {
		l.Allow("127.0.0.1", "/companies", "GET")
	}
	allowed, _ := l.Allow("127.0.0.1", "/companies", "GET")
	require.False(t, allowed)

	*now = now.Add(time.Second)
	allowed, _ = l.Allow("127.0.0.1", "/companies", "GET")
	assert.True(t, allowed)
	allowed, _ = l.Allow("127.0.0.1", "/companies", "GET")
	assert.False(t, allowed)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer l.Stop()

	allowed, _ := l.Allow("10.0.0.1", "/companies", "GET")
	assert.True(t, allowed)
	allowed, _ = l.Allow("10.0.0.1", "/companies", "GET")
	assert.False(t, allowed)
	allowed, _ = l.Allow("10.0.0.2", "/companies", "GET")
	assert.True(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(NewConfig(Settings{Enabled: false}))
	defer l.Stop()

	for i := 0; i < 1000; i++ {
		allowed, _ := l.Allow("127.0.0.1", "/scan", "POST")
		require.True(t, allowed)
	}
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	cfg := NewConfig(Settings{
		Enabled:   true,
		Limit:     1,
		Whitelist: []string{"10.0.0.1"},
		Blacklist: []string{" 10.0.0.9 "},
	})
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/companies", "GET")
		assert.True(t, allowed)
	}
	allowed, _ := l.Allow("10.0.0.9", "/health", "GET")
	assert.False(t, allowed)
}

func TestLimiter_ScanEndpointLimit(t *testing.T) {
	l, _ := newTestLimiter(NewConfig(Settings{Enabled: true, ScanPerHour: 4}))
	defer l.Stop()

	// burst of 2
	for i := 0; i < 2; i++ {
		allowed, info := l.Allow("127.0.0.1", "/scan", "POST")
		require.True(t, allowed)
		assert.Equal(t, 4, info.Limit)
	}
	allowed, info := l.Allow("127.0.0.1", "/scan", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 15*time.Minute, info.RetryAfter.Round(time.Second))
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	l, _ := newTestLimiter(NewConfig(Settings{Enabled: true, Limit: 1}))
	defer l.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := l.Allow("127.0.0.1", "/health", "GET")
		require.True(t, allowed)
		allowed, _ = l.Allow("127.0.0.1", "/metrics", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_CleanupIdleBuckets(t *testing.T) {
	l, now := newTestLimiter(&Config{Enabled: true, DefaultLimit: 5, DefaultWindow: time.Minute, IdleTTL: time.Hour})
	defer l.Stop()

	l.Allow("10.0.0.1", "/companies", "GET")
	*now = now.Add(2 * time.Hour)
	l.Allow("10.0.0.2", "/companies", "GET")
	l.cleanupBuckets()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Len(t, l.buckets, 1)
	assert.Contains(t, l.buckets, "10.0.0.2:/companies:GET")
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})
	defer l.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if ok, _ := l.Allow("127.0.0.1", "/companies", "GET"); ok {
					mu.Lock()
					granted++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, granted)
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(nil)
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs(10)

	tests := []struct {
		path, method string
		wantPath     string
		wantLimit    int
		wantNil      bool
	}{
		{"/scan", "POST", "/scan", 10, false},
		{"/companies/abc/send", "POST", "/companies/", 60, false},
		{"/companies/abc/draft", "PUT", "/companies/", 60, false},
		{"/health", "GET", "/health", 0, false},
		{"/metrics", "GET", "/metrics", 0, false},
		{"/companies", "GET", "", 0, true},
		{"/scan", "GET", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}
