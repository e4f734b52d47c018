package tzconv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const la = "America/Los_Angeles"

func civil(y int, m time.Month, d, h, min int) CivilTime {
	return CivilTime{Year: y, Month: m, Day: d, Hour: h, Minute: min}
}

func TestToUTC_StandardAndDaylight(t *testing.T) {
	c := New()

	winter, err := c.ToUTC(civil(2025, time.January, 15, 10, 0), la)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 15, 18, 0, 0, 0, time.UTC), winter)

	summer, err := c.ToUTC(civil(2025, time.June, 15, 10, 0), la)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.June, 15, 17, 0, 0, 0, time.UTC), summer)
}

func TestToUTC_SpringForwardGap(t *testing.T) {
	c := New()

	_, err := c.ToUTC(civil(2025, time.March, 9, 2, 30), la)
	assert.ErrorIs(t, err, ErrInvalidLocalTime)

	// readings on both sides of the gap still resolve
	before, err := c.ToUTC(civil(2025, time.March, 9, 1, 59), la)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 9, 9, 59, 0, 0, time.UTC), before)

	after, err := c.ToUTC(civil(2025, time.March, 9, 3, 0), la)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 9, 10, 0, 0, 0, time.UTC), after)
}

func TestToUTC_FallBackPicksEarlierInstant(t *testing.T) {
	c := New()

	got, err := c.ToUTC(civil(2025, time.November, 2, 1, 30), la)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.November, 2, 8, 30, 0, 0, time.UTC), got)

	local, err := c.ToLocal(got, la)
	require.NoError(t, err)
	assert.Equal(t, civil(2025, time.November, 2, 1, 30), local)

	// the second 01:30 (PST) reads the same wall clock
	later, err := c.ToLocal(got.Add(time.Hour), la)
	require.NoError(t, err)
	assert.Equal(t, local, later)
}

func TestToUTCForward_ShiftsPastGap(t *testing.T) {
	c := New()

	got, err := c.ToUTCForward(civil(2025, time.March, 9, 2, 30), la)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 9, 10, 30, 0, 0, time.UTC), got)

	local, err := c.ToLocal(got, la)
	require.NoError(t, err)
	assert.Equal(t, civil(2025, time.March, 9, 3, 30), local)

	regular, err := c.ToUTCForward(civil(2025, time.November, 2, 1, 30), la)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.November, 2, 8, 30, 0, 0, time.UTC), regular)
}

func TestRoundTrip(t *testing.T) {
	c := New()
	zones := []string{la, "Europe/Berlin", "Asia/Kolkata", "Australia/Sydney", "UTC"}

	for _, tz := range zones {
		start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
		for instant := start; instant.Before(start.AddDate(1, 0, 0)); instant = instant.Add(97 * time.Minute) {
			local, err := c.ToLocal(instant, tz)
			require.NoError(t, err)

			back, err := c.ToUTC(local, tz)
			require.NoError(t, err)

			// during a fall-back overlap the later instant maps back to the earlier one
			if !back.Equal(instant) {
				assert.Equal(t, time.Hour, instant.Sub(back), "%s %s", tz, instant)
				continue
			}

			again, err := c.ToLocal(back, tz)
			require.NoError(t, err)
			assert.Equal(t, local, again)
		}
	}
}

func TestToUTC_Errors(t *testing.T) {
	c := New()

	_, err := c.ToUTC(civil(2025, time.January, 1, 9, 0), "Mars/Olympus_Mons")
	assert.ErrorIs(t, err, ErrUnknownTimeZone)

	_, err = c.ToUTC(civil(2025, time.January, 1, 9, 0), "")
	assert.ErrorIs(t, err, ErrUnknownTimeZone)

	_, err = c.ToUTC(civil(2025, time.February, 30, 9, 0), la)
	assert.ErrorIs(t, err, ErrInvalidCivilTime)

	_, err = c.ToUTC(civil(2025, time.February, 1, 24, 0), la)
	assert.ErrorIs(t, err, ErrInvalidCivilTime)

	_, err = c.ToLocal(time.Now(), "Nope/Nope")
	assert.ErrorIs(t, err, ErrUnknownTimeZone)
}

func TestLocation_Cached(t *testing.T) {
	c := New()

	first, err := c.Location(la)
	require.NoError(t, err)
	second, err := c.Location(la)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestCivilDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, d.Weekday())
	assert.Equal(t, CivilDate{Year: 2025, Month: time.March, Day: 10}, d.AddDays(1))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.False(t, d.Before(d))
	assert.Equal(t, "2025-03-09", d.String())
	assert.Equal(t, civil(2025, time.March, 9, 9, 30), d.At("09:30"))

	_, err = ParseDate("2025-13-01")
	assert.ErrorIs(t, err, ErrInvalidCivilTime)
	assert.False(t, CivilDate{Year: 2025, Month: time.February, Day: 29}.Valid())
}
