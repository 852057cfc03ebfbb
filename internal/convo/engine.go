package convo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/carwise/internal/config"
	"github.com/ukydev/carwise/internal/db"
	"github.com/ukydev/carwise/internal/models"
)

// Notifier delivers a message to a chat outside the request/response
// cycle. The reminder dispatcher satisfies it.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

type stepFunc func(ctx context.Context, s *Session, in Input) (Result, error)
type entryFunc func(ctx context.Context, s *Session) (Result, error)

// Engine drives every entry flow. It is safe for concurrent use across
// chats; inputs of a single chat are expected to arrive serialized.
type Engine struct {
	stores   *db.Stores
	sessions SessionStore
	notifier Notifier
	cfg      *config.Config
	log      *logrus.Entry

	entries map[FlowKind]entryFunc
	steps   map[FlowKind]map[State]stepFunc

	now func() time.Time
}

// New builds the engine with all flow transition tables registered.
func New(stores *db.Stores, sessions SessionStore, notifier Notifier, cfg *config.Config, log *logrus.Entry) *Engine {
	e := &Engine{
		stores:   stores,
		sessions: sessions,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
		entries:  make(map[FlowKind]entryFunc),
		steps:    make(map[FlowKind]map[State]stepFunc),
		now:      time.Now,
	}
	e.registerVehicleFlow()
	e.registerOdometerFlow()
	e.registerDeleteFlow()
	e.registerFuelFlow()
	e.registerMaintenanceFlow()
	e.registerInsuranceFlow()
	e.registerReminderFlow()
	e.registerSupportFlow()
	return e
}

func (e *Engine) register(kind FlowKind, entry entryFunc, table map[State]stepFunc) {
	e.entries[kind] = entry
	e.steps[kind] = table
}

// Resume returns the chat's in-progress session, or ErrNoSession.
func (e *Engine) Resume(ctx context.Context, chatID int64) (*Session, error) {
	return e.sessions.Get(ctx, chatID)
}

// Start begins a flow for the chat, discarding any previous incomplete
// session. The returned session is nil when the flow terminated
// immediately (for example: no vehicles to operate on).
func (e *Engine) Start(ctx context.Context, kind FlowKind, chatID int64) (*Session, Result, error) {
	entry, ok := e.entries[kind]
	if !ok {
		return nil, Result{}, fmt.Errorf("unknown flow %q", kind)
	}
	if err := e.sessions.Delete(ctx, chatID); err != nil {
		return nil, Result{}, err
	}

	s := newSession(chatID, kind)
	res, err := entry(ctx, s)
	if err != nil {
		return nil, Result{}, err
	}
	if res.Kind != Advance {
		return nil, res, nil
	}
	if err := e.sessions.Put(ctx, s); err != nil {
		return nil, Result{}, err
	}
	return s, res, nil
}

// Submit feeds one user input into the chat's session. A rejected input
// reprompts without advancing; cancel abandons the flow with no side
// effects; the terminal confirm commits the entity.
func (e *Engine) Submit(ctx context.Context, s *Session, in Input) (Result, error) {
	if in.isCancel() {
		if err := e.sessions.Delete(ctx, s.ChatID); err != nil {
			return Result{}, err
		}
		return cancelled("Cancelled."), nil
	}

	table, ok := e.steps[s.Flow]
	if !ok {
		return Result{}, fmt.Errorf("unknown flow %q", s.Flow)
	}
	step, ok := table[s.State]
	if !ok {
		return Result{}, fmt.Errorf("flow %q has no state %q", s.Flow, s.State)
	}

	res, err := step(ctx, s, in)
	if err != nil {
		return Result{}, err
	}

	switch res.Kind {
	case Advance, Reprompt:
		if err := e.sessions.Put(ctx, s); err != nil {
			return Result{}, err
		}
	case Complete, Cancelled:
		if err := e.sessions.Delete(ctx, s.ChatID); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

// --- shared helpers -----------------------------------------------------

const fieldVehicleID = "vehicle_id"

// beginWithVehicle is the common flow entry: no vehicles terminates the
// flow, a single vehicle is selected implicitly, otherwise the user picks
// one from a menu and the flow continues in selectState.
func (e *Engine) beginWithVehicle(ctx context.Context, s *Session, selectState State, next func(ctx context.Context, s *Session, v *models.Vehicle) (Result, error)) (Result, error) {
	vehicles, err := e.stores.Vehicles.FindActiveByOwner(ctx, s.ChatID)
	if err != nil {
		return Result{}, err
	}
	switch len(vehicles) {
	case 0:
		return cancelled("You have no vehicles yet. Use /addcar to register one."), nil
	case 1:
		s.Set(fieldVehicleID, vehicles[0].ID.Hex())
		return next(ctx, s, &vehicles[0])
	default:
		choices := make([]Choice, 0, len(vehicles))
		for _, v := range vehicles {
			choices = append(choices, Choice{
				Label: fmt.Sprintf("%s - %s", v.Label(), formatKm(v.Odometer)),
				Data:  Token{Stage: "vehicle", Value: v.ID.Hex()}.Encode(),
			})
		}
		s.State = selectState
		return advance("Choose a vehicle:", choices...), nil
	}
}

// vehicleSelectStep handles the vehicle menu selection and hands off to
// the flow's next prompt.
func (e *Engine) vehicleSelectStep(next func(ctx context.Context, s *Session, v *models.Vehicle) (Result, error)) stepFunc {
	return func(ctx context.Context, s *Session, in Input) (Result, error) {
		if in.Token == nil || in.Token.Stage != "vehicle" {
			return reprompt("Please choose a vehicle from the list."), nil
		}
		v, res, err := e.ownedVehicle(ctx, s.ChatID, in.Token.Value)
		if v == nil {
			return res, err
		}
		s.Set(fieldVehicleID, v.ID.Hex())
		return next(ctx, s, v)
	}
}

// sessionVehicle re-reads the flow's vehicle at commit time. A vanished
// vehicle aborts the flow with a terminal not-found message.
func (e *Engine) sessionVehicle(ctx context.Context, s *Session) (*models.Vehicle, Result, error) {
	return e.ownedVehicle(ctx, s.ChatID, s.Get(fieldVehicleID))
}

func (e *Engine) ownedVehicle(ctx context.Context, chatID int64, hex string) (*models.Vehicle, Result, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, completed("Vehicle not found."), nil
	}
	v, err := e.stores.Vehicles.FindByID(ctx, id)
	if errors.Is(err, db.ErrVehicleNotFound) {
		return nil, completed("Vehicle not found."), nil
	}
	if err != nil {
		return nil, Result{}, err
	}
	if v.OwnerID != chatID || !v.Active {
		return nil, completed("Vehicle not found."), nil
	}
	return v, Result{}, nil
}

func fuelTypeChoices() []Choice {
	choices := make([]Choice, 0, len(models.FuelTypes))
	for _, ft := range models.FuelTypes {
		choices = append(choices, Choice{
			Label: config.FuelTypeLabel(ft),
			Data:  Token{Stage: "fuel", Value: string(ft)}.Encode(),
		})
	}
	return choices
}
