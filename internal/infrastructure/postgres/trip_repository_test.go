package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepartureDayWindow(t *testing.T) {
	t.Run("UTCの日付", func(t *testing.T) {
		d := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
		start, end := departureDayWindow(d)

		assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("非UTCの日付はそのタイムゾーンの日界で区切る", func(t *testing.T) {
		jst := time.FixedZone("JST", 9*60*60)
		d := time.Date(2025, 6, 10, 15, 30, 0, 0, jst)
		start, end := departureDayWindow(d)

		assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, jst), start)
		assert.Equal(t, time.Date(2025, 6, 11, 0, 0, 0, 0, jst), end)

		// JSTの早朝便（UTCでは前日）が当日の窓に含まれる
		earlyMorning := time.Date(2025, 6, 10, 7, 0, 0, 0, jst)
		assert.False(t, earlyMorning.Before(start))
		assert.True(t, earlyMorning.Before(end))
	})

	t.Run("時刻成分は無視される", func(t *testing.T) {
		jst := time.FixedZone("JST", 9*60*60)
		midnight := time.Date(2025, 6, 10, 0, 0, 0, 0, jst)
		evening := time.Date(2025, 6, 10, 23, 59, 59, 0, jst)

		s1, e1 := departureDayWindow(midnight)
		s2, e2 := departureDayWindow(evening)

		require.True(t, s1.Equal(s2))
		require.True(t, e1.Equal(e2))
	})
}
