package merge

import (
	"time"

	"github.com/ringsaturn/tzf"
)

// TimezoneResolver maps a coordinate to an IANA time zone. Implementations
// return nil when no zone can be determined (open ocean, bad data).
type TimezoneResolver interface {
	Zone(lat, lon float64) *time.Location
}

type tzfResolver struct {
	finder tzf.F
}

// NewTimezoneResolver builds the embedded-polygon resolver. Construction is
// expensive; build one per process and share it.
func NewTimezoneResolver() (TimezoneResolver, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, err
	}
	return &tzfResolver{finder: finder}, nil
}

func (r *tzfResolver) Zone(lat, lon float64) *time.Location {
	name := r.finder.GetTimezoneName(lon, lat)
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil
	}
	return loc
}

// FixedResolver resolves every coordinate to one zone. Useful in tests and
// as an operator override when a collection is known to come from one place.
type FixedResolver struct {
	Location *time.Location
}

func (r FixedResolver) Zone(lat, lon float64) *time.Location {
	return r.Location
}
