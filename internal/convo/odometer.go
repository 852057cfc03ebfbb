package convo

import (
	"context"
	"fmt"

	"github.com/ukydev/carwise/internal/models"
)

// Odometer update. A decrease is never applied through the normal path:
// it branches into a separately confirmed override step.
const (
	stateOdoVehicle         State = "odometer.vehicle"
	stateOdoValue           State = "odometer.value"
	stateOdoConfirmDecrease State = "odometer.confirm_decrease"
)

func (e *Engine) registerOdometerFlow() {
	e.register(FlowUpdateOdometer,
		func(ctx context.Context, s *Session) (Result, error) {
			return e.beginWithVehicle(ctx, s, stateOdoVehicle, e.promptOdoValue)
		},
		map[State]stepFunc{
			stateOdoVehicle:         e.vehicleSelectStep(e.promptOdoValue),
			stateOdoValue:           e.stepOdoValue,
			stateOdoConfirmDecrease: e.stepOdoConfirmDecrease,
		})
}

func (e *Engine) promptOdoValue(ctx context.Context, s *Session, v *models.Vehicle) (Result, error) {
	s.State = stateOdoValue
	return advance(fmt.Sprintf("%s\nCurrent odometer: %s\n\nEnter the new reading in km:",
		v.Label(), formatKm(v.Odometer))), nil
}

func (e *Engine) stepOdoValue(ctx context.Context, s *Session, in Input) (Result, error) {
	value, msg := parseOdometer(in.Text)
	if msg != "" {
		return reprompt(msg), nil
	}
	v, res, err := e.sessionVehicle(ctx, s)
	if v == nil {
		return res, err
	}
	if value < v.Odometer {
		s.Set("new_odometer", fmt.Sprintf("%g", value))
		s.State = stateOdoConfirmDecrease
		return advance(fmt.Sprintf(
			"The new reading (%s) is lower than the current one (%s).\n"+
				"This is only expected after an odometer replacement or reset.\n\nApply it anyway?",
			formatKm(value), formatKm(v.Odometer)), yesNoChoices("confirm")...), nil
	}
	return e.applyOdometer(ctx, s, v, value)
}

func (e *Engine) stepOdoConfirmDecrease(ctx context.Context, s *Session, in Input) (Result, error) {
	switch confirmAnswer(in) {
	case ValueNo:
		return cancelled("Odometer update cancelled."), nil
	case ValueYes:
	default:
		return reprompt("Please answer yes or no."), nil
	}
	v, res, err := e.sessionVehicle(ctx, s)
	if v == nil {
		return res, err
	}
	return e.applyOdometer(ctx, s, v, s.Float("new_odometer"))
}

func (e *Engine) applyOdometer(ctx context.Context, s *Session, v *models.Vehicle, value float64) (Result, error) {
	if err := e.stores.Vehicles.UpdateOdometer(ctx, v.ID, value); err != nil {
		return Result{}, err
	}
	delta := value - v.Odometer
	msg := fmt.Sprintf("Odometer updated.\nWas: %s\nNow: %s", formatKm(v.Odometer), formatKm(value))
	if delta > 0 {
		msg += fmt.Sprintf("\nDriven: +%.1f km", delta)
	}
	return completed(msg), nil
}
