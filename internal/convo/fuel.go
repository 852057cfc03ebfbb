package convo

import (
	"context"
	"fmt"
	"strings"

	"github.com/ukydev/carwise/internal/config"
	"github.com/ukydev/carwise/internal/models"
)

// Fuel log: vehicle -> liters -> cost -> odometer (optional) -> fuel type
// -> confirm.
const (
	stateFuelVehicle  State = "fuel.vehicle"
	stateFuelLiters   State = "fuel.liters"
	stateFuelCost     State = "fuel.cost"
	stateFuelOdometer State = "fuel.odometer"
	stateFuelType     State = "fuel.type"
	stateFuelConfirm  State = "fuel.confirm"
)

func (e *Engine) registerFuelFlow() {
	e.register(FlowLogFuel,
		func(ctx context.Context, s *Session) (Result, error) {
			return e.beginWithVehicle(ctx, s, stateFuelVehicle, e.promptFuelLiters)
		},
		map[State]stepFunc{
			stateFuelVehicle:  e.vehicleSelectStep(e.promptFuelLiters),
			stateFuelLiters:   e.stepFuelLiters,
			stateFuelCost:     e.stepFuelCost,
			stateFuelOdometer: e.stepFuelOdometer,
			stateFuelType:     e.stepFuelType,
			stateFuelConfirm:  e.stepFuelConfirm,
		})
}

func (e *Engine) promptFuelLiters(ctx context.Context, s *Session, v *models.Vehicle) (Result, error) {
	s.State = stateFuelLiters
	return advance(fmt.Sprintf("Logging a refueling for %s.\n\nEnter the amount in liters:\n(for example: 45.5)", v.Label())), nil
}

func (e *Engine) stepFuelLiters(ctx context.Context, s *Session, in Input) (Result, error) {
	liters, msg := parseLiters(in.Text)
	if msg != "" {
		return reprompt(msg), nil
	}
	s.Set("liters", fmt.Sprintf("%g", liters))
	s.State = stateFuelCost
	return advance("Enter the total cost:\n(for example: 2500)"), nil
}

func (e *Engine) stepFuelCost(ctx context.Context, s *Session, in Input) (Result, error) {
	cost, msg := parseCost(in.Text)
	if msg != "" {
		return reprompt(msg), nil
	}
	s.Set("cost", fmt.Sprintf("%g", cost))
	s.State = stateFuelOdometer
	return advance("Enter the odometer reading at the pump, or send '-' to skip:"), nil
}

func (e *Engine) stepFuelOdometer(ctx context.Context, s *Session, in Input) (Result, error) {
	if in.Text != skipSentinel {
		odo, msg := parseOdometer(in.Text)
		if msg != "" {
			return reprompt(msg + " Or send '-' to skip."), nil
		}
		s.Set("odometer", fmt.Sprintf("%g", odo))
	}
	s.State = stateFuelType
	return advance("Choose the fuel type:", fuelTypeChoices()...), nil
}

func (e *Engine) stepFuelType(ctx context.Context, s *Session, in Input) (Result, error) {
	if in.Token == nil || in.Token.Stage != "fuel" || !models.IsValidFuelType(models.FuelType(in.Token.Value)) {
		return reprompt("Please choose a fuel type from the list."), nil
	}
	s.Set("fuel_type", in.Token.Value)
	s.State = stateFuelConfirm

	var b strings.Builder
	b.WriteString("Please check the refueling:\n\n")
	fmt.Fprintf(&b, "Amount: %.2f l\n", s.Float("liters"))
	fmt.Fprintf(&b, "Cost: %.2f\n", s.Float("cost"))
	if s.Has("odometer") {
		fmt.Fprintf(&b, "Odometer: %s\n", formatKm(s.Float("odometer")))
	}
	fmt.Fprintf(&b, "Fuel type: %s\n", config.FuelTypeLabel(models.FuelType(s.Get("fuel_type"))))
	b.WriteString("\nSave it?")
	return advance(b.String(), yesNoChoices("confirm")...), nil
}

func (e *Engine) stepFuelConfirm(ctx context.Context, s *Session, in Input) (Result, error) {
	switch confirmAnswer(in) {
	case ValueNo:
		return cancelled("Refueling discarded."), nil
	case ValueYes:
	default:
		return reprompt("Please answer yes or no."), nil
	}

	v, res, err := e.sessionVehicle(ctx, s)
	if v == nil {
		return res, err
	}

	ev := models.FuelEvent{
		VehicleID: v.ID,
		Liters:    s.Float("liters"),
		Cost:      s.Float("cost"),
		FuelType:  models.FuelType(s.Get("fuel_type")),
		Date:      e.now(),
	}
	if s.Has("odometer") {
		odo := s.Float("odometer")
		ev.Odometer = &odo
	}
	if err := e.stores.Fuel.Insert(ctx, ev); err != nil {
		return Result{}, err
	}

	// The event keeps whatever reading was entered, but the vehicle's
	// odometer only ever moves forward through this path.
	if ev.Odometer != nil && *ev.Odometer > v.Odometer {
		if err := e.stores.Vehicles.UpdateOdometer(ctx, v.ID, *ev.Odometer); err != nil {
			return Result{}, err
		}
	}

	pricePerLiter := ev.Cost / ev.Liters
	return completed(fmt.Sprintf(
		"Refueling saved.\n\nAmount: %.2f l\nCost: %.2f\nPrice per liter: %.2f",
		ev.Liters, ev.Cost, pricePerLiter)), nil
}
