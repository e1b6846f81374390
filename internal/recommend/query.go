// Package recommend turns a mood profile into a short list of songs.
package recommend

import (
	"errors"
	"fmt"
	"slices"

	"github.com/justestif/resonance/internal/mood"
)

// Limits imposed by the recommendations API.
const (
	MaxSeeds = 5
	MaxLimit = 100
)

// ErrInvalidQuery is returned for queries the API would reject.
var ErrInvalidQuery = errors.New("invalid recommendation query")

// Defaults holds the request-independent query settings.
type Defaults struct {
	Limit    int    // tracks returned to the user
	Market   string // ISO 3166-1 alpha-2 country code
	PoolSize int    // candidates requested before filtering and diversifying
}

// StandardDefaults returns 5 tracks for the US market from a pool of 20.
func StandardDefaults() Defaults {
	return Defaults{Limit: 5, Market: "US", PoolSize: 20}
}

// Query is a fully specified recommendation request.
type Query struct {
	Profile  mood.Profile
	Category mood.Category
	Seeds    []string
	Limit    int
	PoolSize int
	Market   string
	Exclude  []string
}

// NewQuery builds a query whose seed genres come from the profile's category.
func NewQuery(p mood.Profile, d Defaults) Query {
	std := StandardDefaults()
	if d.Limit <= 0 {
		d.Limit = std.Limit
	}
	if d.PoolSize < d.Limit {
		d.PoolSize = max(d.Limit, std.PoolSize)
	}
	if d.Market == "" {
		d.Market = std.Market
	}

	p = p.Clamp()
	c := p.Category()
	return Query{
		Profile:  p,
		Category: c,
		Seeds:    slices.Clone(c.Seeds),
		Limit:    min(d.Limit, MaxLimit),
		PoolSize: min(d.PoolSize, MaxLimit),
		Market:   d.Market,
	}
}

// WithExclude returns a copy of q that skips the given track IDs.
func (q Query) WithExclude(ids []string) Query {
	q.Exclude = append(slices.Clone(q.Exclude), ids...)
	return q
}

// Validate checks seeds, limits and the profile ranges.
func (q Query) Validate() error {
	switch {
	case len(q.Seeds) == 0 || len(q.Seeds) > MaxSeeds:
		return fmt.Errorf("%w: %d seed genres (want 1-%d)", ErrInvalidQuery, len(q.Seeds), MaxSeeds)
	case q.Limit < 1 || q.Limit > MaxLimit:
		return fmt.Errorf("%w: limit %d", ErrInvalidQuery, q.Limit)
	case q.PoolSize < q.Limit || q.PoolSize > MaxLimit:
		return fmt.Errorf("%w: pool size %d", ErrInvalidQuery, q.PoolSize)
	case !q.Profile.InRange():
		return fmt.Errorf("%w: profile out of range", ErrInvalidQuery)
	}
	return nil
}

func (q Query) excluded() map[string]bool {
	m := make(map[string]bool, len(q.Exclude))
	for _, id := range q.Exclude {
		m[id] = true
	}
	return m
}
