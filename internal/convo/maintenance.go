package convo

import (
	"context"
	"fmt"
	"strings"

	"github.com/ukydev/carwise/internal/config"
	"github.com/ukydev/carwise/internal/models"
)

// Maintenance log: vehicle -> category -> description -> cost -> odometer
// (optional) -> confirm. Confirming a scheduled-service event also
// replaces the vehicle's service baseline and clears both service
// notified flags. After the event is committed the flow branches into an
// optional recurring-replacement step that upserts a Part.
const (
	stateMaintVehicle        State = "maintenance.vehicle"
	stateMaintCategory       State = "maintenance.category"
	stateMaintDescription    State = "maintenance.description"
	stateMaintCost           State = "maintenance.cost"
	stateMaintOdometer       State = "maintenance.odometer"
	stateMaintConfirm        State = "maintenance.confirm"
	stateMaintRecurring      State = "maintenance.recurring"
	stateMaintIntervalKm     State = "maintenance.interval_km"
	stateMaintIntervalMonths State = "maintenance.interval_months"
)

func (e *Engine) registerMaintenanceFlow() {
	e.register(FlowLogMaintenance,
		func(ctx context.Context, s *Session) (Result, error) {
			return e.beginWithVehicle(ctx, s, stateMaintVehicle, e.promptMaintCategory)
		},
		map[State]stepFunc{
			stateMaintVehicle:        e.vehicleSelectStep(e.promptMaintCategory),
			stateMaintCategory:       e.stepMaintCategory,
			stateMaintDescription:    e.stepMaintDescription,
			stateMaintCost:           e.stepMaintCost,
			stateMaintOdometer:       e.stepMaintOdometer,
			stateMaintConfirm:        e.stepMaintConfirm,
			stateMaintRecurring:      e.stepMaintRecurring,
			stateMaintIntervalKm:     e.stepMaintIntervalKm,
			stateMaintIntervalMonths: e.stepMaintIntervalMonths,
		})
}

func categoryChoices() []Choice {
	choices := make([]Choice, 0, len(models.MaintenanceCategories))
	for _, cat := range models.MaintenanceCategories {
		choices = append(choices, Choice{
			Label: config.CategoryLabel(cat),
			Data:  Token{Stage: "category", Value: string(cat)}.Encode(),
		})
	}
	return choices
}

func (e *Engine) promptMaintCategory(ctx context.Context, s *Session, v *models.Vehicle) (Result, error) {
	s.State = stateMaintCategory
	return advance(fmt.Sprintf("Logging maintenance for %s.\n\nChoose a category:", v.Label()), categoryChoices()...), nil
}

func (e *Engine) stepMaintCategory(ctx context.Context, s *Session, in Input) (Result, error) {
	if in.Token == nil || in.Token.Stage != "category" {
		return reprompt("Please choose a category from the list."), nil
	}
	s.Set("category", in.Token.Value)
	s.State = stateMaintDescription
	return advance("Describe what was done:\n(for example: oil and filter change)"), nil
}

func (e *Engine) stepMaintDescription(ctx context.Context, s *Session, in Input) (Result, error) {
	if in.Text == "" {
		return reprompt("Please describe what was done."), nil
	}
	s.Set("description", in.Text)
	s.State = stateMaintCost
	return advance("Enter the cost:\n(for example: 4500)"), nil
}

func (e *Engine) stepMaintCost(ctx context.Context, s *Session, in Input) (Result, error) {
	cost, msg := parseCost(in.Text)
	if msg != "" {
		return reprompt(msg), nil
	}
	s.Set("cost", fmt.Sprintf("%g", cost))
	s.State = stateMaintOdometer
	return advance("Enter the odometer reading, or send '-' to skip:"), nil
}

func (e *Engine) stepMaintOdometer(ctx context.Context, s *Session, in Input) (Result, error) {
	if in.Text != skipSentinel {
		odo, msg := parseOdometer(in.Text)
		if msg != "" {
			return reprompt(msg + " Or send '-' to skip."), nil
		}
		s.Set("odometer", fmt.Sprintf("%g", odo))
	}
	s.State = stateMaintConfirm

	cat := models.MaintenanceCategory(s.Get("category"))
	var b strings.Builder
	b.WriteString("Please check the maintenance record:\n\n")
	fmt.Fprintf(&b, "Category: %s\n", config.CategoryLabel(cat))
	fmt.Fprintf(&b, "Description: %s\n", s.Get("description"))
	fmt.Fprintf(&b, "Cost: %.2f\n", s.Float("cost"))
	if s.Has("odometer") {
		fmt.Fprintf(&b, "Odometer: %s\n", formatKm(s.Float("odometer")))
	}
	if cat == models.CategoryService {
		b.WriteString("\nThis will also reset the service reminder baseline.")
	}
	b.WriteString("\nSave it?")
	return advance(b.String(), yesNoChoices("confirm")...), nil
}

func (e *Engine) stepMaintConfirm(ctx context.Context, s *Session, in Input) (Result, error) {
	switch confirmAnswer(in) {
	case ValueNo:
		return cancelled("Maintenance record discarded."), nil
	case ValueYes:
	default:
		return reprompt("Please answer yes or no."), nil
	}

	v, res, err := e.sessionVehicle(ctx, s)
	if v == nil {
		return res, err
	}

	cat := models.MaintenanceCategory(s.Get("category"))
	ev := models.MaintenanceEvent{
		VehicleID:   v.ID,
		Category:    cat,
		Description: s.Get("description"),
		Cost:        s.Float("cost"),
		Date:        e.now(),
	}
	var odoPtr *float64
	if s.Has("odometer") {
		odo := s.Float("odometer")
		odoPtr = &odo
		ev.Odometer = &odo
	}
	if err := e.stores.Maintenance.Insert(ctx, ev); err != nil {
		return Result{}, err
	}

	if cat == models.CategoryService {
		if err := e.stores.Vehicles.ApplyServiceBaseline(ctx, v.ID, odoPtr, ev.Date); err != nil {
			return Result{}, err
		}
		e.log.WithField("vehicle_id", v.ID.Hex()).Info("service baseline replaced")
	}
	if odoPtr != nil && *odoPtr > v.Odometer {
		if err := e.stores.Vehicles.UpdateOdometer(ctx, v.ID, *odoPtr); err != nil {
			return Result{}, err
		}
	}

	s.State = stateMaintRecurring
	return advance(fmt.Sprintf(
		"Maintenance saved: %s, %.2f.\n\nTrack %q as a recurring replacement with its own reminder?",
		config.CategoryLabel(cat), ev.Cost, ev.Description), yesNoChoices("recurring")...), nil
}

func (e *Engine) stepMaintRecurring(ctx context.Context, s *Session, in Input) (Result, error) {
	switch confirmAnswer(in) {
	case ValueNo:
		return completed("Done."), nil
	case ValueYes:
	default:
		return reprompt("Please answer yes or no."), nil
	}
	s.State = stateMaintIntervalKm
	return advance("Enter the replacement interval in km, or 0 to skip distance reminders:"), nil
}

func (e *Engine) stepMaintIntervalKm(ctx context.Context, s *Session, in Input) (Result, error) {
	km, msg := parseInterval(in.Text)
	if msg != "" {
		return reprompt(msg), nil
	}
	s.Set("interval_km", fmt.Sprintf("%g", km))
	s.State = stateMaintIntervalMonths
	return advance("Enter the replacement interval in months, or 0 to skip time reminders:"), nil
}

func (e *Engine) stepMaintIntervalMonths(ctx context.Context, s *Session, in Input) (Result, error) {
	monthsVal, msg := parseInterval(in.Text)
	if msg != "" {
		return reprompt(msg), nil
	}

	v, res, err := e.sessionVehicle(ctx, s)
	if v == nil {
		return res, err
	}

	now := e.now()
	part := models.Part{
		VehicleID: v.ID,
		Name:      s.Get("description"),
		LastDate:  &now,
	}
	if s.Has("odometer") {
		odo := s.Float("odometer")
		part.LastOdometer = &odo
	}
	if km := s.Float("interval_km"); km > 0 {
		part.IntervalKm = &km
	}
	if months := int(monthsVal); months > 0 {
		part.IntervalMonths = &months
	}
	if err := e.stores.Parts.Upsert(ctx, part); err != nil {
		return Result{}, err
	}

	return completed(fmt.Sprintf(
		"Recurring replacement saved for %q.\nDistance interval: %s\nTime interval: %s",
		part.Name, intervalKmLabel(part.IntervalKm), intervalMonthsLabel(part.IntervalMonths))), nil
}

func intervalKmLabel(km *float64) string {
	if km == nil {
		return "not set"
	}
	return formatKm(*km)
}

func intervalMonthsLabel(months *int) string {
	if months == nil {
		return "not set"
	}
	return fmt.Sprintf("%d mo", *months)
}
