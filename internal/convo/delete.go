package convo

import (
	"context"
	"fmt"

	"github.com/ukydev/carwise/internal/models"
)

// Vehicle removal is a soft delete: the active flag is cleared so fuel
// and maintenance history stays readable.
const (
	stateDelVehicle State = "delete.vehicle"
	stateDelConfirm State = "delete.confirm"
)

func (e *Engine) registerDeleteFlow() {
	e.register(FlowDeleteVehicle,
		func(ctx context.Context, s *Session) (Result, error) {
			return e.beginWithVehicle(ctx, s, stateDelVehicle, e.promptDelConfirm)
		},
		map[State]stepFunc{
			stateDelVehicle: e.vehicleSelectStep(e.promptDelConfirm),
			stateDelConfirm: e.stepDelConfirm,
		})
}

func (e *Engine) promptDelConfirm(ctx context.Context, s *Session, v *models.Vehicle) (Result, error) {
	s.State = stateDelConfirm
	return advance(fmt.Sprintf(
		"Remove %s?\nIts fuel and maintenance history will be kept.", v.Label()),
		yesNoChoices("confirm")...), nil
}

func (e *Engine) stepDelConfirm(ctx context.Context, s *Session, in Input) (Result, error) {
	switch confirmAnswer(in) {
	case ValueNo:
		return cancelled("Removal cancelled."), nil
	case ValueYes:
	default:
		return reprompt("Please answer yes or no."), nil
	}
	v, res, err := e.sessionVehicle(ctx, s)
	if v == nil {
		return res, err
	}
	if err := e.stores.Vehicles.Deactivate(ctx, v.ID); err != nil {
		return Result{}, err
	}
	return completed(fmt.Sprintf("%s removed.", v.Label())), nil
}
