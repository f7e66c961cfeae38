package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyRefundPercent(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		untilStart time.Duration
		want       int
	}{
		{48 * time.Hour, 100},
		{24 * time.Hour, 100},
		{24*time.Hour - time.Second, 50},
		{3 * time.Hour, 50},
		{3*time.Hour - time.Second, 0},
		{0, 0},
		{-time.Hour, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.RefundPercent(tt.untilStart), tt.untilStart.String())
	}
}

func TestRefundAmountRoundsDown(t *testing.T) {
	assert.Equal(t, int64(50000), RefundAmount(100000, 50))
	assert.Equal(t, int64(37499), RefundAmount(74999, 50))
	assert.Equal(t, int64(0), RefundAmount(100000, 0))
	assert.Equal(t, int64(80000), RefundAmount(80000, 100))
}

func TestPolicyCanReschedule(t *testing.T) {
	p := DefaultPolicy()

	assert.True(t, p.CanReschedule(6*time.Hour))
	assert.True(t, p.CanReschedule(7*time.Hour))
	assert.False(t, p.CanReschedule(6*time.Hour-time.Minute))
}

func TestLoadPolicy(t *testing.T) {
	t.Run("empty path gives defaults", func(t *testing.T) {
		p, err := LoadPolicy("")
		require.NoError(t, err)
		assert.Equal(t, DefaultPolicy(), p)
	})

	t.Run("partial override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		require.NoError(t, os.WriteFile(path, []byte("half_refund_window: 2h\nmax_reschedules: 2\n"), 0o600))

		p, err := LoadPolicy(path)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Hour, p.HalfRefundWindow)
		assert.Equal(t, 2, p.MaxReschedules)
		assert.Equal(t, DefaultFullRefundWindow, p.FullRefundWindow)
		assert.Equal(t, DefaultRescheduleMinNotice, p.RescheduleMinNotice)
	})

	t.Run("inconsistent windows", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		require.NoError(t, os.WriteFile(path, []byte("full_refund_window: 1h\n"), 0o600))

		_, err := LoadPolicy(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
