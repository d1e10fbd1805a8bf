package claimtesting

import (
	"sync"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
)

type TestContext struct {
	Log   logger.Logger
	Clock *ManualClock
	T     *testing.T
}

type TestConfig struct {
	// StartTime is the initial clock reading, unix seconds. Tests normally
	// fix it so window arithmetic is the same from run to run.
	StartTime       int64
	TestLabelPrefix string
	LogLevel        string // defaults to "NOOP"
}

func NewTestContext(t *testing.T, cfg TestConfig) TestContext {
	level := cfg.LogLevel
	if level == "" {
		level = "NOOP"
	}
	logger.New(level)
	return TestContext{
		T:     t,
		Log:   logger.Sugar.WithServiceName(cfg.TestLabelPrefix),
		Clock: NewManualClock(cfg.StartTime),
	}
}

func (c *TestContext) GetLog() logger.Logger { return c.Log }

// ManualClock is a clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

func NewManualClock(now int64) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Set(now int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *ManualClock) Advance(seconds int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += seconds
	return c.now
}
