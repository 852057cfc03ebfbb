// Package convo implements the conversational data-entry engine: a
// per-chat finite-state machine that collects one entity field by field,
// validates every input in place, and commits the entity to the store only
// on the terminal confirm transition.
package convo

import "strings"

// FlowKind names one multi-step entry flow.
type FlowKind string

const (
	FlowRegisterVehicle   FlowKind = "register_vehicle"
	FlowUpdateOdometer    FlowKind = "update_odometer"
	FlowDeleteVehicle     FlowKind = "delete_vehicle"
	FlowLogFuel           FlowKind = "log_fuel"
	FlowLogMaintenance    FlowKind = "log_maintenance"
	FlowAddInsurance      FlowKind = "add_insurance"
	FlowConfigureReminder FlowKind = "configure_reminder"
	FlowContactSupport    FlowKind = "contact_support"
)

// State identifies one step inside a flow.
type State string

// Reserved token values.
const (
	ValueManual = "manual"
	ValueCancel = "cancel"
	ValueYes    = "yes"
	ValueNo     = "no"
)

// Token is the structured callback payload of a menu selection: the flow
// stage it belongs to, the parent value the menu was built from, and the
// chosen value (or a reserved value).
type Token struct {
	Stage  string
	Parent string
	Value  string
}

// Encode renders the token in its wire form.
func (t Token) Encode() string {
	return t.Stage + "|" + t.Parent + "|" + t.Value
}

// ParseToken parses the wire form produced by Encode.
func ParseToken(raw string) (Token, bool) {
	parts := strings.SplitN(raw, "|", 3)
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return Token{}, false
	}
	return Token{Stage: parts[0], Parent: parts[1], Value: parts[2]}, true
}

// Input is one inbound user event: free text or a parsed menu selection.
type Input struct {
	Text  string
	Token *Token
}

// TextInput wraps plain text as an Input.
func TextInput(text string) Input {
	return Input{Text: strings.TrimSpace(text)}
}

// TokenInput wraps a menu selection as an Input.
func TokenInput(t Token) Input {
	return Input{Token: &t}
}

func (in Input) isCancel() bool {
	if in.Token != nil {
		return in.Token.Value == ValueCancel
	}
	return in.Text == "/cancel" || strings.EqualFold(in.Text, "cancel")
}

// ResultKind classifies the outcome of one submit.
type ResultKind int

const (
	// Reprompt means the input was rejected and the state did not change.
	Reprompt ResultKind = iota
	// Advance means the flow moved to its next prompt.
	Advance
	// Complete means the flow reached its terminal commit (or a terminal
	// failure such as the referenced entity vanishing).
	Complete
	// Cancelled means the flow was abandoned without side effects.
	Cancelled
)

// Choice is one selectable menu entry offered with a prompt.
type Choice struct {
	Label string `json:"label"`
	Data  string `json:"data"` // encoded Token
}

// Result is the engine's answer to a submit: what happened, the message to
// render, and an optional choice menu.
type Result struct {
	Kind    ResultKind
	Message string
	Choices []Choice
}

func reprompt(msg string) Result   { return Result{Kind: Reprompt, Message: msg} }
func cancelled(msg string) Result  { return Result{Kind: Cancelled, Message: msg} }
func completed(msg string) Result  { return Result{Kind: Complete, Message: msg} }
func advance(msg string, choices ...Choice) Result {
	return Result{Kind: Advance, Message: msg, Choices: choices}
}

func yesNoChoices(stage string) []Choice {
	return []Choice{
		{Label: "Yes", Data: Token{Stage: stage, Value: ValueYes}.Encode()},
		{Label: "No", Data: Token{Stage: stage, Value: ValueNo}.Encode()},
	}
}
