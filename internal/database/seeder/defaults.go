package seeder

import "github.com/sirupsen/logrus"

type Paths struct {
	Polls         string
	Timezones     string
	BusinessHours string
}

// FromPaths builds the importers for every non-empty path, reference data first.
func FromPaths(p Paths, l *logrus.Logger) []Seeder {
	out := make([]Seeder, 0, 3)
	if p.Timezones != "" {
		out = append(out, TimezonesSeeder{Path: p.Timezones, Logger: l})
	}
	if p.BusinessHours != "" {
		out = append(out, BusinessHoursSeeder{Path: p.BusinessHours, Logger: l})
	}
	if p.Polls != "" {
		out = append(out, PollsSeeder{Path: p.Polls, Logger: l})
	}
	return out
}
