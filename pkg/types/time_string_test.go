package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, ts.Hour())
	assert.Equal(t, 30, ts.Minute())
	assert.Equal(t, 570, ts.Minutes())

	for _, bad := range []string{"9:30", "24:00", "12:60", "noon", ""} {
		_, err := NewTimeStringFromString(bad)
		assert.ErrorIs(t, err, ErrInvalidTimeString, bad)
	}
}

func TestTimeString_Arithmetic(t *testing.T) {
	ts := TimeString("23:30")
	assert.Equal(t, TimeString("00:15"), ts.AddMinutes(45))
	assert.Equal(t, TimeString("23:00"), ts.AddMinutes(-30))
	assert.True(t, TimeString("09:00").IsBefore("17:00"))
	assert.True(t, TimeString("17:00").IsAfter("09:00"))
	assert.False(t, TimeString("09:00").IsAfter("09:00"))
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString
	require.NoError(t, ts.Scan("10:15:00"))
	assert.Equal(t, TimeString("10:15"), ts)

	require.NoError(t, ts.Scan([]byte("08:05:00")))
	assert.Equal(t, TimeString("08:05"), ts)

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 18, 45, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("18:45"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}

func TestTimeString_JSON(t *testing.T) {
	var payload struct {
		Open TimeString `json:"open"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"open":"09:00"}`), &payload))
	assert.Equal(t, TimeString("09:00"), payload.Open)

	assert.Error(t, json.Unmarshal([]byte(`{"open":"9am"}`), &payload))

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"open":"09:00"}`, string(data))
}
