package convo

import (
	"context"
	"fmt"

	"github.com/ukydev/carwise/internal/models"
)

// Service reminder configuration: vehicle -> distance interval (0 = off)
// -> time interval in months (0 = off). Committing the intervals clears
// both service notified flags so the new thresholds arm fresh.
const (
	stateRemVehicle State = "reminder.vehicle"
	stateRemKm      State = "reminder.interval_km"
	stateRemMonths  State = "reminder.interval_months"
)

func (e *Engine) registerReminderFlow() {
	e.register(FlowConfigureReminder,
		func(ctx context.Context, s *Session) (Result, error) {
			return e.beginWithVehicle(ctx, s, stateRemVehicle, e.promptRemKm)
		},
		map[State]stepFunc{
			stateRemVehicle: e.vehicleSelectStep(e.promptRemKm),
			stateRemKm:      e.stepRemKm,
			stateRemMonths:  e.stepRemMonths,
		})
}

func (e *Engine) promptRemKm(ctx context.Context, s *Session, v *models.Vehicle) (Result, error) {
	s.State = stateRemKm
	return advance(fmt.Sprintf(
		"Configuring service reminders for %s.\n\n"+
			"Enter the service interval in km (for example: 10000).\n"+
			"Send 0 to disable distance reminders:", v.Label())), nil
}

func (e *Engine) stepRemKm(ctx context.Context, s *Session, in Input) (Result, error) {
	km, msg := parseInterval(in.Text)
	if msg != "" {
		return reprompt(msg), nil
	}
	s.Set("interval_km", fmt.Sprintf("%g", km))
	s.State = stateRemMonths
	return advance("Enter the service interval in months (for example: 12).\nSend 0 to disable time reminders:"), nil
}

func (e *Engine) stepRemMonths(ctx context.Context, s *Session, in Input) (Result, error) {
	monthsVal, msg := parseInterval(in.Text)
	if msg != "" {
		return reprompt(msg), nil
	}

	v, res, err := e.sessionVehicle(ctx, s)
	if v == nil {
		return res, err
	}

	var kmPtr *float64
	if km := s.Float("interval_km"); km > 0 {
		kmPtr = &km
	}
	var monthsPtr *int
	if months := int(monthsVal); months > 0 {
		monthsPtr = &months
	}
	if err := e.stores.Vehicles.SetServiceIntervals(ctx, v.ID, kmPtr, monthsPtr); err != nil {
		return Result{}, err
	}

	return completed(fmt.Sprintf(
		"Reminders configured for %s.\nDistance interval: %s\nTime interval: %s",
		v.Label(), intervalKmLabel(kmPtr), intervalMonthsLabel(monthsPtr))), nil
}
