package usecase

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// timezoneResolver maps stores to locations for one job run. Stores without a
// configured zone, or with a zone the runtime cannot load, get the fallback.
type timezoneResolver struct {
	zones    map[uuid.UUID]string
	fallback *time.Location
	loaded   map[string]*time.Location
	logger   *logrus.Logger
}

func newTimezoneResolver(zones map[uuid.UUID]string, fallback *time.Location, l *logrus.Logger) *timezoneResolver {
	if fallback == nil {
		fallback = time.UTC
	}
	return &timezoneResolver{
		zones:    zones,
		fallback: fallback,
		loaded:   map[string]*time.Location{},
		logger:   l,
	}
}

func (r *timezoneResolver) Resolve(storeID uuid.UUID) *time.Location {
	name := strings.TrimSpace(r.zones[storeID])
	if name == "" {
		return r.fallback
	}
	if loc, ok := r.loaded[name]; ok {
		return loc
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"store_id": storeID,
			"timezone": name,
		}).Warn("[Report] unknown timezone, using default")
		loc = r.fallback
	}
	r.loaded[name] = loc
	return loc
}
