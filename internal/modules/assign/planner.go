// README: Greedy dispatch planner (pure function, no external dependencies).
package assign

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"medride/internal/config"
	"medride/internal/modules/driver"
	"medride/internal/modules/trip"
	"medride/internal/types"
)

var (
	ErrNoTrips   = errors.New("no upcoming trips to optimize")
	ErrNoDrivers = errors.New("no active drivers to assign")
)

// Plan assigns drivers to unassigned trips over a date range. The output is
// deterministic for identical inputs: dates are processed in ascending
// order, trips within a date in ascending pickup-time order (ties keep
// input order), and driver selection prefers the fewest same-day
// assignments, then the fewest total, then roster order. Drivers at the
// per-day soft cap are deprioritized; when every driver is capped the first
// roster entry takes the overflow rather than leaving the trip unassigned.
// A driver's k-th trip of a day is suggested at its original pickup time
// plus (k-1) stagger intervals.
func Plan(trips []*trip.Trip, drivers []*driver.Driver, cfg config.DispatchConfig) ([]Proposal, error) {
	if len(trips) == 0 {
		return nil, ErrNoTrips
	}
	if len(drivers) == 0 {
		return nil, ErrNoDrivers
	}
	softCap := cfg.DailySoftCap
	if softCap <= 0 {
		softCap = 5
	}
	stagger := time.Duration(cfg.StaggerMinutes) * time.Minute
	if stagger <= 0 {
		stagger = 30 * time.Minute
	}

	byDate := make(map[string][]*trip.Trip)
	var dates []string
	for _, t := range trips {
		d := t.PickupTime.Format(dateLayout)
		if _, ok := byDate[d]; !ok {
			dates = append(dates, d)
		}
		byDate[d] = append(byDate[d], t)
	}
	sort.Strings(dates)

	totalCount := make(map[types.ID]int)
	var proposals []Proposal
	for _, date := range dates {
		dayTrips := byDate[date]
		sort.SliceStable(dayTrips, func(i, j int) bool {
			return dayTrips[i].PickupTime.Before(dayTrips[j].PickupTime)
		})
		dayCount := make(map[types.ID]int)
		for _, t := range dayTrips {
			d := pickDriver(drivers, dayCount, totalCount, softCap)
			k := dayCount[d.ID]
			shift := time.Duration(k) * stagger
			suggested := t.PickupTime.Add(shift)

			proposals = append(proposals, Proposal{
				TripID:         t.ID,
				DriverID:       d.ID,
				DriverName:     d.FullName(),
				TripDate:       date,
				OriginalTime:   t.PickupTime,
				SuggestedTime:  suggested,
				Reasoning:      reasoning(d, date, k, shift),
				TimeDifference: timeDifference(shift),
			})
			dayCount[d.ID]++
			totalCount[d.ID]++
		}
	}

	sort.SliceStable(proposals, func(i, j int) bool {
		if proposals[i].TripDate != proposals[j].TripDate {
			return proposals[i].TripDate < proposals[j].TripDate
		}
		return proposals[i].OriginalTime.Before(proposals[j].OriginalTime)
	})
	return proposals, nil
}

// pickDriver prefers the fewest same-day assignments, breaking ties by
// fewest total assignments and then roster order. Capped drivers are
// skipped; if everyone is capped the first roster entry is the fallback.
func pickDriver(drivers []*driver.Driver, dayCount, totalCount map[types.ID]int, softCap int) *driver.Driver {
	var best *driver.Driver
	for _, d := range drivers {
		if dayCount[d.ID] >= softCap {
			continue
		}
		if best == nil {
			best = d
			continue
		}
		if dayCount[d.ID] < dayCount[best.ID] {
			best = d
			continue
		}
		if dayCount[d.ID] == dayCount[best.ID] && totalCount[d.ID] < totalCount[best.ID] {
			best = d
		}
	}
	if best == nil {
		return drivers[0]
	}
	return best
}

func reasoning(d *driver.Driver, date string, existing int, shift time.Duration) string {
	if existing == 0 {
		return fmt.Sprintf("%s has no other trips on %s", d.FullName(), date)
	}
	return fmt.Sprintf("%s already has %d trip(s) on %s; pickup shifted %d min to avoid overlap",
		d.FullName(), existing, date, int(shift.Minutes()))
}

func timeDifference(shift time.Duration) string {
	if shift == 0 {
		return "No change"
	}
	return fmt.Sprintf("+%d min later", int(shift.Minutes()))
}
