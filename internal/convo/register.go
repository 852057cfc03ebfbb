package convo

import (
	"context"
	"fmt"
	"strings"

	"github.com/ukydev/carwise/internal/catalog"
	"github.com/ukydev/carwise/internal/config"
	"github.com/ukydev/carwise/internal/models"
)

// Vehicle registration:
// brand (catalog or manual) -> model (catalog or manual, skipped straight
// to manual when the brand has no catalog models) -> year -> nickname
// (optional) -> odometer -> fuel type -> confirm.
const (
	stateRegBrand       State = "register.brand"
	stateRegBrandManual State = "register.brand_manual"
	stateRegModel       State = "register.model"
	stateRegModelManual State = "register.model_manual"
	stateRegYear        State = "register.year"
	stateRegNickname    State = "register.nickname"
	stateRegOdometer    State = "register.odometer"
	stateRegFuelType    State = "register.fuel_type"
	stateRegConfirm     State = "register.confirm"
)

func (e *Engine) registerVehicleFlow() {
	e.register(FlowRegisterVehicle,
		func(ctx context.Context, s *Session) (Result, error) {
			s.State = stateRegBrand
			return advance("Adding a new vehicle.\nChoose a brand or enter one manually:", brandChoices()...), nil
		},
		map[State]stepFunc{
			stateRegBrand:       e.stepRegBrand,
			stateRegBrandManual: e.stepRegBrandManual,
			stateRegModel:       e.stepRegModel,
			stateRegModelManual: e.stepRegModelManual,
			stateRegYear:        e.stepRegYear,
			stateRegNickname:    e.stepRegNickname,
			stateRegOdometer:    e.stepRegOdometer,
			stateRegFuelType:    e.stepRegFuelType,
			stateRegConfirm:     e.stepRegConfirm,
		})
}

func brandChoices() []Choice {
	choices := make([]Choice, 0, len(catalog.Brands)+1)
	for _, b := range catalog.Brands {
		choices = append(choices, Choice{Label: b, Data: Token{Stage: "brand", Value: b}.Encode()})
	}
	choices = append(choices, Choice{Label: "Enter manually", Data: Token{Stage: "brand", Value: ValueManual}.Encode()})
	return choices
}

func (e *Engine) stepRegBrand(ctx context.Context, s *Session, in Input) (Result, error) {
	if in.Token != nil && in.Token.Value == ValueManual {
		s.State = stateRegBrandManual
		return advance("Type the brand name:\n(for example: Toyota, BMW, Lada)"), nil
	}
	brand := in.Text
	if in.Token != nil {
		brand = in.Token.Value
	}
	if brand == "" {
		return reprompt("Please choose a brand or type its name."), nil
	}
	return e.acceptBrand(s, brand), nil
}

func (e *Engine) stepRegBrandManual(ctx context.Context, s *Session, in Input) (Result, error) {
	if in.Text == "" {
		return reprompt("Please type the brand name."), nil
	}
	return e.acceptBrand(s, in.Text), nil
}

// acceptBrand stores the brand and routes to the model step: a catalog
// brand gets a model menu, a catalog miss falls through to free text.
func (e *Engine) acceptBrand(s *Session, brand string) Result {
	s.Set("brand", brand)
	brandModels := catalog.ModelsFor(brand)
	if len(brandModels) == 0 {
		s.State = stateRegModelManual
		return advance("Type the model name:\n(for example: Camry, X5, Vesta)")
	}
	choices := make([]Choice, 0, len(brandModels)+1)
	for _, m := range brandModels {
		choices = append(choices, Choice{Label: m, Data: Token{Stage: "model", Parent: brand, Value: m}.Encode()})
	}
	choices = append(choices, Choice{Label: "Enter manually", Data: Token{Stage: "model", Parent: brand, Value: ValueManual}.Encode()})
	s.State = stateRegModel
	return advance(fmt.Sprintf("Choose a %s model:", brand), choices...)
}

func (e *Engine) stepRegModel(ctx context.Context, s *Session, in Input) (Result, error) {
	if in.Token != nil && in.Token.Value == ValueManual {
		s.State = stateRegModelManual
		return advance("Type the model name:"), nil
	}
	model := in.Text
	if in.Token != nil {
		model = in.Token.Value
	}
	if model == "" {
		return reprompt("Please choose a model or type its name."), nil
	}
	return e.acceptModel(s, model), nil
}

func (e *Engine) stepRegModelManual(ctx context.Context, s *Session, in Input) (Result, error) {
	if in.Text == "" {
		return reprompt("Please type the model name."), nil
	}
	return e.acceptModel(s, in.Text), nil
}

func (e *Engine) acceptModel(s *Session, model string) Result {
	s.Set("model", model)
	s.State = stateRegYear
	return advance("Enter the model year:\n(for example: 2015)")
}

func (e *Engine) stepRegYear(ctx context.Context, s *Session, in Input) (Result, error) {
	year, msg := parseYear(in.Text, e.now())
	if msg != "" {
		return reprompt(msg), nil
	}
	s.Set("year", fmt.Sprintf("%d", year))
	s.State = stateRegNickname
	return advance("Give the vehicle a nickname, or send '-' to skip:"), nil
}

func (e *Engine) stepRegNickname(ctx context.Context, s *Session, in Input) (Result, error) {
	if in.Text == "" {
		return reprompt("Please type a nickname or send '-' to skip."), nil
	}
	if in.Text != skipSentinel {
		s.Set("nickname", in.Text)
	}
	s.State = stateRegOdometer
	return advance("Enter the current odometer reading in km:\n(for example: 150000)"), nil
}

func (e *Engine) stepRegOdometer(ctx context.Context, s *Session, in Input) (Result, error) {
	odo, msg := parseOdometer(in.Text)
	if msg != "" {
		return reprompt(msg), nil
	}
	s.Set("odometer", fmt.Sprintf("%g", odo))
	s.State = stateRegFuelType
	return advance("Choose the fuel type:", fuelTypeChoices()...), nil
}

func (e *Engine) stepRegFuelType(ctx context.Context, s *Session, in Input) (Result, error) {
	if in.Token == nil || in.Token.Stage != "fuel" || !models.IsValidFuelType(models.FuelType(in.Token.Value)) {
		return reprompt("Please choose a fuel type from the list."), nil
	}
	s.Set("fuel_type", in.Token.Value)
	s.State = stateRegConfirm

	var b strings.Builder
	b.WriteString("Please check the vehicle details:\n\n")
	fmt.Fprintf(&b, "Brand: %s\n", s.Get("brand"))
	fmt.Fprintf(&b, "Model: %s\n", s.Get("model"))
	fmt.Fprintf(&b, "Year: %s\n", s.Get("year"))
	if s.Has("nickname") {
		fmt.Fprintf(&b, "Nickname: %s\n", s.Get("nickname"))
	}
	fmt.Fprintf(&b, "Odometer: %s\n", formatKm(s.Float("odometer")))
	fmt.Fprintf(&b, "Fuel type: %s\n", config.FuelTypeLabel(models.FuelType(s.Get("fuel_type"))))
	b.WriteString("\nIs everything correct?")
	return advance(b.String(), yesNoChoices("confirm")...), nil
}

func (e *Engine) stepRegConfirm(ctx context.Context, s *Session, in Input) (Result, error) {
	switch confirmAnswer(in) {
	case ValueNo:
		return cancelled("Registration cancelled."), nil
	case ValueYes:
	default:
		return reprompt("Please answer yes or no."), nil
	}

	if _, err := e.stores.Users.Ensure(ctx, models.User{ChatID: s.ChatID}); err != nil {
		return Result{}, err
	}
	v := models.Vehicle{
		OwnerID:  s.ChatID,
		Brand:    s.Get("brand"),
		Model:    s.Get("model"),
		Year:     s.Int("year"),
		Nickname: s.Get("nickname"),
		Odometer: s.Float("odometer"),
		FuelType: models.FuelType(s.Get("fuel_type")),
	}
	id, err := e.stores.Vehicles.Insert(ctx, v)
	if err != nil {
		return Result{}, err
	}
	e.log.WithField("vehicle_id", id.Hex()).WithField("chat_id", s.ChatID).Info("vehicle registered")
	return completed(fmt.Sprintf(
		"Vehicle added: %s %s (%s), %s.\nYou can now log fuel, maintenance and insurance for it.",
		v.Brand, v.Model, s.Get("year"), formatKm(v.Odometer))), nil
}

// confirmAnswer normalizes a yes/no reply from a token or text.
func confirmAnswer(in Input) string {
	if in.Token != nil {
		return in.Token.Value
	}
	switch strings.ToLower(in.Text) {
	case "yes", "y":
		return ValueYes
	case "no", "n":
		return ValueNo
	default:
		return ""
	}
}
