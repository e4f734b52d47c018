// Package tzconv converts between business-local wall clock readings and
// UTC instants using the IANA time zone database.
package tzconv

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
	_ "time/tzdata"
)

var (
	// ErrInvalidLocalTime is returned for wall clock readings that do not
	// exist in the zone (skipped by a spring-forward transition).
	ErrInvalidLocalTime = errors.New("tzconv: local time does not exist in time zone")

	// ErrUnknownTimeZone is returned for ids missing from the zone database.
	ErrUnknownTimeZone = errors.New("tzconv: unknown time zone")

	// ErrInvalidCivilTime is returned for out-of-range fields.
	ErrInvalidCivilTime = errors.New("tzconv: invalid civil time")
)

// Converter caches loaded locations. Safe for concurrent use.
type Converter struct {
	mu        sync.RWMutex
	locations map[string]*time.Location
}

// New creates a converter with an empty location cache.
func New() *Converter {
	return &Converter{locations: make(map[string]*time.Location)}
}

// Location returns the cached *time.Location for an IANA id.
func (c *Converter) Location(tzID string) (*time.Location, error) {
	c.mu.RLock()
	loc, ok := c.locations[tzID]
	c.mu.RUnlock()
	if ok {
		return loc, nil
	}

	if tzID == "" {
		return nil, fmt.Errorf("%w: empty id", ErrUnknownTimeZone)
	}
	loc, err := time.LoadLocation(tzID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnknownTimeZone, tzID, err)
	}

	c.mu.Lock()
	c.locations[tzID] = loc
	c.mu.Unlock()
	return loc, nil
}

// ToLocal returns the wall clock reading of instant in tzID.
func (c *Converter) ToLocal(instant time.Time, tzID string) (CivilTime, error) {
	loc, err := c.Location(tzID)
	if err != nil {
		return CivilTime{}, err
	}
	return CivilOf(instant.In(loc)), nil
}

// ToUTC resolves a wall clock reading in tzID to a UTC instant.
// Readings repeated by a fall-back transition resolve to the earlier
// instant. Readings skipped by a spring-forward transition fail with
// ErrInvalidLocalTime.
func (c *Converter) ToUTC(civil CivilTime, tzID string) (time.Time, error) {
	if err := civil.Validate(); err != nil {
		return time.Time{}, err
	}
	loc, err := c.Location(tzID)
	if err != nil {
		return time.Time{}, err
	}

	matches := resolve(civil, loc)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("%w: %s in %s", ErrInvalidLocalTime, civil, tzID)
	}
	return matches[0], nil
}

// ToUTCForward behaves like ToUTC but maps a skipped reading to the first
// instant after the gap, shifted by the gap length (02:30 on a
// spring-forward night becomes 03:30 daylight time). Used for working hours
// boundaries, which must always resolve.
func (c *Converter) ToUTCForward(civil CivilTime, tzID string) (time.Time, error) {
	if err := civil.Validate(); err != nil {
		return time.Time{}, err
	}
	loc, err := c.Location(tzID)
	if err != nil {
		return time.Time{}, err
	}

	if matches := resolve(civil, loc); len(matches) > 0 {
		return matches[0], nil
	}

	naive := civil.naive()
	_, before := naive.Add(-24 * time.Hour).In(loc).Zone()
	return naive.Add(-time.Duration(before) * time.Second).UTC(), nil
}

// resolve returns every instant whose reading in loc equals civil, earliest first.
func resolve(civil CivilTime, loc *time.Location) []time.Time {
	naive := civil.naive()

	offsets := make([]int, 0, 3)
	for _, probe := range []time.Time{naive.Add(-24 * time.Hour), naive, naive.Add(24 * time.Hour)} {
		_, off := probe.In(loc).Zone()
		seen := false
		for _, o := range offsets {
			if o == off {
				seen = true
				break
			}
		}
		if !seen {
			offsets = append(offsets, off)
		}
	}

	matches := make([]time.Time, 0, 2)
	for _, off := range offsets {
		candidate := naive.Add(-time.Duration(off) * time.Second).UTC()
		if CivilOf(candidate.In(loc)) != civil {
			continue
		}
		dup := false
		for _, m := range matches {
			if m.Equal(candidate) {
				dup = true
				break
			}
		}
		if !dup {
			matches = append(matches, candidate)
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Before(matches[j]) })
	return matches
}
