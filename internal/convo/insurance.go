package convo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ukydev/carwise/internal/models"
)

// Insurance: vehicle -> end date -> cost -> policy number (optional) ->
// company (optional) -> notes (optional) -> confirm.
const (
	stateInsVehicle State = "insurance.vehicle"
	stateInsEndDate State = "insurance.end_date"
	stateInsCost    State = "insurance.cost"
	stateInsPolicy  State = "insurance.policy"
	stateInsCompany State = "insurance.company"
	stateInsNotes   State = "insurance.notes"
	stateInsConfirm State = "insurance.confirm"
)

func (e *Engine) registerInsuranceFlow() {
	e.register(FlowAddInsurance,
		func(ctx context.Context, s *Session) (Result, error) {
			return e.beginWithVehicle(ctx, s, stateInsVehicle, e.promptInsEndDate)
		},
		map[State]stepFunc{
			stateInsVehicle: e.vehicleSelectStep(e.promptInsEndDate),
			stateInsEndDate: e.stepInsEndDate,
			stateInsCost:    e.stepInsCost,
			stateInsPolicy:  e.stepInsPolicy,
			stateInsCompany: e.stepInsCompany,
			stateInsNotes:   e.stepInsNotes,
			stateInsConfirm: e.stepInsConfirm,
		})
}

func (e *Engine) promptInsEndDate(ctx context.Context, s *Session, v *models.Vehicle) (Result, error) {
	s.State = stateInsEndDate
	return advance(fmt.Sprintf(
		"Adding an insurance policy for %s.\n\nEnter the policy end date as DD.MM.YYYY (for example: 31.12.2026):",
		v.Label())), nil
}

func (e *Engine) stepInsEndDate(ctx context.Context, s *Session, in Input) (Result, error) {
	end, msg := parseDate(in.Text)
	if msg != "" {
		return reprompt(msg), nil
	}
	today := e.now().Truncate(24 * time.Hour)
	if end.Before(today) {
		return reprompt("The end date cannot be in the past. Enter a future date:"), nil
	}
	s.Set("end_date", end.Format("2006-01-02"))
	s.State = stateInsCost
	return advance("Enter the policy cost:"), nil
}

func (e *Engine) stepInsCost(ctx context.Context, s *Session, in Input) (Result, error) {
	cost, msg := parseCost(in.Text)
	if msg != "" {
		return reprompt(msg), nil
	}
	s.Set("cost", fmt.Sprintf("%g", cost))
	s.State = stateInsPolicy
	return advance("Enter the policy number, or send '-' to skip:"), nil
}

func (e *Engine) stepInsPolicy(ctx context.Context, s *Session, in Input) (Result, error) {
	if in.Text == "" {
		return reprompt("Please enter the policy number or send '-' to skip."), nil
	}
	if in.Text != skipSentinel {
		s.Set("policy_number", in.Text)
	}
	s.State = stateInsCompany
	return advance("Enter the insurance company, or send '-' to skip:"), nil
}

func (e *Engine) stepInsCompany(ctx context.Context, s *Session, in Input) (Result, error) {
	if in.Text == "" {
		return reprompt("Please enter the company name or send '-' to skip."), nil
	}
	if in.Text != skipSentinel {
		s.Set("company", in.Text)
	}
	s.State = stateInsNotes
	return advance("Any notes? Send '-' to skip:"), nil
}

func (e *Engine) stepInsNotes(ctx context.Context, s *Session, in Input) (Result, error) {
	if in.Text == "" {
		return reprompt("Please enter a note or send '-' to skip."), nil
	}
	if in.Text != skipSentinel {
		s.Set("notes", in.Text)
	}
	s.State = stateInsConfirm

	var b strings.Builder
	b.WriteString("Please check the policy:\n\n")
	end, _ := time.Parse("2006-01-02", s.Get("end_date"))
	fmt.Fprintf(&b, "Valid until: %s\n", end.Format("02.01.2006"))
	fmt.Fprintf(&b, "Cost: %.2f\n", s.Float("cost"))
	if s.Has("policy_number") {
		fmt.Fprintf(&b, "Policy number: %s\n", s.Get("policy_number"))
	}
	if s.Has("company") {
		fmt.Fprintf(&b, "Company: %s\n", s.Get("company"))
	}
	if s.Has("notes") {
		fmt.Fprintf(&b, "Notes: %s\n", s.Get("notes"))
	}
	b.WriteString("\nSave it?")
	return advance(b.String(), yesNoChoices("confirm")...), nil
}

func (e *Engine) stepInsConfirm(ctx context.Context, s *Session, in Input) (Result, error) {
	switch confirmAnswer(in) {
	case ValueNo:
		return cancelled("Policy discarded."), nil
	case ValueYes:
	default:
		return reprompt("Please answer yes or no."), nil
	}

	v, res, err := e.sessionVehicle(ctx, s)
	if v == nil {
		return res, err
	}

	end, _ := time.Parse("2006-01-02", s.Get("end_date"))
	ins := models.Insurance{
		VehicleID:    v.ID,
		PolicyNumber: s.Get("policy_number"),
		Company:      s.Get("company"),
		StartDate:    e.now(),
		EndDate:      end,
		Cost:         s.Float("cost"),
		Notes:        s.Get("notes"),
	}
	if err := e.stores.Insurance.Insert(ctx, ins); err != nil {
		return Result{}, err
	}

	return completed(fmt.Sprintf(
		"Insurance added for %s.\nValid until: %s\nCost: %.2f",
		v.Label(), end.Format("02.01.2006"), ins.Cost)), nil
}
