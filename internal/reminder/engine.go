// Package reminder implements the scheduled threshold evaluator. Every
// check is edge-triggered: a crossing notifies once, gated by a persisted
// notified flag that only an entity update (new baseline, new intervals,
// renewed policy) ever clears.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/carwise/internal/db"
	"github.com/ukydev/carwise/internal/models"
)

// A date interval in months is approximated as 30 days per month.
const daysPerMonth = 30

// Dispatcher delivers a notification to a chat. Best effort: a failure is
// retried implicitly on the next tick because the flag stays unset.
type Dispatcher interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Engine evaluates mileage and calendar thresholds for every active
// vehicle and dispatches at most one notification per crossing.
type Engine struct {
	vehicles  db.VehicleStore
	insurance db.InsuranceStore
	parts     db.PartStore
	dispatch  Dispatcher
	log       *logrus.Entry
}

// New builds the reminder engine.
func New(vehicles db.VehicleStore, insurance db.InsuranceStore, parts db.PartStore, dispatch Dispatcher, log *logrus.Entry) *Engine {
	return &Engine{
		vehicles:  vehicles,
		insurance: insurance,
		parts:     parts,
		dispatch:  dispatch,
		log:       log,
	}
}

// distanceCrossed reports an inclusive crossing of baseline+interval.
// Unset baseline or interval disables the check.
func distanceCrossed(current float64, baseline, interval *float64) bool {
	if baseline == nil || interval == nil {
		return false
	}
	return current >= *baseline+*interval
}

// dateCrossed reports an inclusive crossing of baseline+months.
func dateCrossed(now time.Time, baseline *time.Time, months *int) bool {
	if baseline == nil || months == nil {
		return false
	}
	due := baseline.AddDate(0, 0, *months*daysPerMonth)
	return !now.Before(due)
}

// Evaluate runs all three checks. Individual entity failures are logged
// and do not stop the scan.
func (e *Engine) Evaluate(ctx context.Context, now time.Time) error {
	vehicles, err := e.vehicles.FindAllActive(ctx)
	if err != nil {
		return fmt.Errorf("vehicle scan failed: %w", err)
	}
	for i := range vehicles {
		v := &vehicles[i]
		e.checkInsurance(ctx, v, now)
		e.checkService(ctx, v, now)
		e.checkParts(ctx, v, now)
	}
	return nil
}

// EvaluateInsurance runs only the insurance check (separate daily tick).
func (e *Engine) EvaluateInsurance(ctx context.Context, now time.Time) error {
	return e.scan(ctx, func(v *models.Vehicle) { e.checkInsurance(ctx, v, now) })
}

// EvaluateService runs only the scheduled-service check.
func (e *Engine) EvaluateService(ctx context.Context, now time.Time) error {
	return e.scan(ctx, func(v *models.Vehicle) { e.checkService(ctx, v, now) })
}

// EvaluateParts runs only the recurring-items check.
func (e *Engine) EvaluateParts(ctx context.Context, now time.Time) error {
	return e.scan(ctx, func(v *models.Vehicle) { e.checkParts(ctx, v, now) })
}

func (e *Engine) scan(ctx context.Context, check func(v *models.Vehicle)) error {
	vehicles, err := e.vehicles.FindAllActive(ctx)
	if err != nil {
		return fmt.Errorf("vehicle scan failed: %w", err)
	}
	for i := range vehicles {
		check(&vehicles[i])
	}
	return nil
}

func (e *Engine) checkService(ctx context.Context, v *models.Vehicle, now time.Time) {
	if distanceCrossed(v.Odometer, v.LastServiceOdometer, v.ServiceIntervalKm) && !v.NotifiedServiceDistance {
		text := fmt.Sprintf(
			"Service due for %s: %s driven since the last service (interval %s).",
			v.Label(), formatKm(v.Odometer-*v.LastServiceOdometer), formatKm(*v.ServiceIntervalKm))
		if e.notify(ctx, v.OwnerID, text) {
			if err := e.vehicles.SetServiceNotified(ctx, v.ID, db.NotifyDistance); err != nil {
				e.log.WithError(err).WithField("vehicle_id", v.ID.Hex()).Error("flag write failed")
			} else {
				v.NotifiedServiceDistance = true
			}
		}
	}

	if dateCrossed(now, v.LastServiceDate, v.ServiceIntervalMonths) && !v.NotifiedServiceDate {
		text := fmt.Sprintf(
			"Service due for %s: more than %d months since the last service (%s).",
			v.Label(), *v.ServiceIntervalMonths, v.LastServiceDate.Format("02.01.2006"))
		if e.notify(ctx, v.OwnerID, text) {
			if err := e.vehicles.SetServiceNotified(ctx, v.ID, db.NotifyDate); err != nil {
				e.log.WithError(err).WithField("vehicle_id", v.ID.Hex()).Error("flag write failed")
			} else {
				v.NotifiedServiceDate = true
			}
		}
	}
}

func (e *Engine) checkParts(ctx context.Context, v *models.Vehicle, now time.Time) {
	parts, err := e.parts.FindByVehicle(ctx, v.ID)
	if err != nil {
		e.log.WithError(err).WithField("vehicle_id", v.ID.Hex()).Error("part scan failed")
		return
	}
	for _, part := range parts {
		if part.Notified {
			continue
		}
		byDistance := distanceCrossed(v.Odometer, part.LastOdometer, part.IntervalKm)
		byDate := dateCrossed(now, part.LastDate, part.IntervalMonths)
		if !byDistance && !byDate {
			continue
		}
		reason := "mileage"
		if !byDistance {
			reason = "time"
		}
		text := fmt.Sprintf("Time to replace %q on %s (%s interval reached).", part.Name, v.Label(), reason)
		if e.notify(ctx, v.OwnerID, text) {
			if err := e.parts.SetNotified(ctx, part.ID); err != nil {
				e.log.WithError(err).WithField("part_id", part.ID.Hex()).Error("flag write failed")
			}
		}
	}
}

// checkInsurance evaluates the three expiry bands most-specific-first.
// At most one band fires per policy per tick; a band already flagged
// never fires again, and closer bands fire independently later.
func (e *Engine) checkInsurance(ctx context.Context, v *models.Vehicle, now time.Time) {
	policies, err := e.insurance.FindByVehicle(ctx, v.ID)
	if err != nil {
		e.log.WithError(err).WithField("vehicle_id", v.ID.Hex()).Error("insurance scan failed")
		return
	}
	for _, pol := range policies {
		daysLeft := pol.DaysLeft(now)

		var band models.NotifyBand
		var text string
		switch {
		case daysLeft <= 0 && !pol.NotifiedExpired:
			band = models.BandExpired
			text = fmt.Sprintf("The insurance policy for %s has expired (%s).", v.Label(), pol.EndDate.Format("02.01.2006"))
		case daysLeft > 0 && daysLeft <= 3 && !pol.Notified3d:
			band = models.Band3d
			text = fmt.Sprintf("The insurance policy for %s expires in %d day(s).", v.Label(), daysLeft)
		case daysLeft > 0 && daysLeft <= 7 && !pol.Notified7d:
			band = models.Band7d
			text = fmt.Sprintf("The insurance policy for %s expires in %d day(s).", v.Label(), daysLeft)
		default:
			continue
		}

		if e.notify(ctx, v.OwnerID, text) {
			if err := e.insurance.SetNotified(ctx, pol.ID, band); err != nil {
				e.log.WithError(err).WithField("insurance_id", pol.ID.Hex()).Error("flag write failed")
			}
		}
	}
}

// notify dispatches and reports success. On failure the caller leaves the
// flag unset so the next tick retries.
func (e *Engine) notify(ctx context.Context, chatID int64, text string) bool {
	if err := e.dispatch.Notify(ctx, chatID, text); err != nil {
		e.log.WithError(err).WithField("chat_id", chatID).Error("notification dispatch failed")
		return false
	}
	return true
}

func formatKm(v float64) string {
	return fmt.Sprintf("%.0f km", v)
}
