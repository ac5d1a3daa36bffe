package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"marketintel/internal/core"
)

func signalSrc(signals []core.Signal, delay time.Duration) Source {
	return func(ctx context.Context) []core.Signal {
		select {
		case <-time.After(delay):
			return signals
		case <-ctx.Done():
			return nil
		}
	}
}

func TestCoordinator_FailFastOnHighConfidence(t *testing.T) {
	c := NewCoordinator(50*time.Millisecond, 0.9, nil)
	tiers := Tiers{
		Tier1: []Source{
			signalSrc([]core.Signal{{Source: "Reuters"}, {Source: "Bloomberg"}}, 0),
		},
		Tier2: []Source{
			func(ctx context.Context) []core.Signal {
				t.Fatal("tier2 must not run when tier1 confidence is high")
				return nil
			},
		},
	}
	out := c.Run(context.Background(), tiers)
	assert.Len(t, out, 2)
}

func TestCoordinator_FallsThroughToTier2(t *testing.T) {
	c := NewCoordinator(20*time.Millisecond, 0.9, nil)
	tiers := Tiers{
		Tier1: []Source{
			signalSrc([]core.Signal{{Source: "RandomBlog"}}, 0),
		},
		Tier2: []Source{
			signalSrc([]core.Signal{{Source: "YahooFinance"}}, 0),
		},
	}
	out := c.Run(context.Background(), tiers)
	assert.GreaterOrEqual(t, len(out), 2)
}

func TestCoordinator_PanicContained(t *testing.T) {
	c := NewCoordinator(20*time.Millisecond, 0.9, nil)
	tiers := Tiers{
		Tier1: []Source{
			func(ctx context.Context) []core.Signal { panic("boom") },
		},
		Tier2: []Source{
			signalSrc([]core.Signal{{Source: "YahooFinance"}}, 0),
		},
	}
	assert.NotPanics(t, func() {
		out := c.Run(context.Background(), tiers)
		assert.GreaterOrEqual(t, len(out), 1)
	})
}

func TestTier1Confidence(t *testing.T) {
	assert.Equal(t, 0.0, tier1Confidence(nil))
	assert.Equal(t, 1.0, tier1Confidence([]core.Signal{{Source: "Reuters"}, {Source: "bloomberg wire"}}))
	assert.InDelta(t, 0.5, tier1Confidence([]core.Signal{{Source: "Reuters"}, {Source: "RandomBlog"}}), 1e-9)
}
