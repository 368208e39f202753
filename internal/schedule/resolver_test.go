package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screenwerk/signage/internal/domain"
)

func ads(pairs ...string) []domain.ScheduledAd {
	// pairs alternate scheduledTime, adId
	out := make([]domain.ScheduledAd, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.ScheduledAd{ScheduledTime: pairs[i], AdID: pairs[i+1]})
	}
	return out
}

func TestResolve_EmptyReturnsNil(t *testing.T) {
	assert.Nil(t, Resolve(nil, "10:00"))
	assert.Nil(t, Resolve([]domain.ScheduledAd{}, "00:00"))
}

func TestResolve_MostRecentStartWins(t *testing.T) {
	got := Resolve(ads("08:00", "A", "14:00", "B"), "10:00")
	require.NotNil(t, got)
	assert.Equal(t, "A", got.AdID)
}

func TestResolve_LastTieWins(t *testing.T) {
	got := Resolve(ads("08:00", "A", "09:00", "B", "09:00", "C"), "10:00")
	require.NotNil(t, got)
	assert.Equal(t, "C", got.AdID)
}

func TestResolve_NothingStartedReturnsSoonestUpcoming(t *testing.T) {
	got := Resolve(ads("14:00", "B", "11:30", "A", "18:00", "C"), "10:00")
	require.NotNil(t, got)
	assert.Equal(t, "A", got.AdID)
}

func TestResolve_ExactStartTimeCounts(t *testing.T) {
	got := Resolve(ads("08:00", "A", "10:00", "B"), "10:00")
	require.NotNil(t, got)
	assert.Equal(t, "B", got.AdID)
}

func TestResolve_ReturnsMemberOfInput(t *testing.T) {
	input := ads("06:15", "A", "23:55", "B", "12:00", "C")
	for _, now := range []string{"00:00", "06:15", "09:41", "12:00", "23:59"} {
		got := Resolve(input, now)
		require.NotNil(t, got)
		assert.Contains(t, []string{"A", "B", "C"}, got.AdID, "now=%s", now)
	}
}

func TestResolve_MidnightWraparoundIsNaive(t *testing.T) {
	// A slot that started at 23:50 yesterday does not carry into the new day:
	// at 00:05 nothing has lexicographically "started" except 00:10's
	// complement, so the soonest upcoming slot is shown. Pinned behaviour.
	got := Resolve(ads("23:50", "LATE", "00:10", "EARLY"), "00:05")
	require.NotNil(t, got)
	assert.Equal(t, "EARLY", got.AdID)
}

func TestClockTime(t *testing.T) {
	at := time.Date(2026, 3, 7, 9, 5, 59, 0, time.UTC)
	assert.Equal(t, "09:05", ClockTime(at))
}
