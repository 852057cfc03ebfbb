package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/carwise/internal/db"
	"github.com/ukydev/carwise/internal/models"
)

type fakeVehicles struct {
	db.VehicleStore
	vehicles map[primitive.ObjectID]*models.Vehicle
}

func newFakeVehicles(vs ...*models.Vehicle) *fakeVehicles {
	f := &fakeVehicles{vehicles: make(map[primitive.ObjectID]*models.Vehicle)}
	for _, v := range vs {
		if v.ID.IsZero() {
			v.ID = primitive.NewObjectID()
		}
		f.vehicles[v.ID] = v
	}
	return f
}

func (f *fakeVehicles) FindAllActive(ctx context.Context) ([]models.Vehicle, error) {
	var out []models.Vehicle
	for _, v := range f.vehicles {
		if v.Active {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeVehicles) SetServiceNotified(ctx context.Context, id primitive.ObjectID, kind db.ServiceNotifyKind) error {
	v, ok := f.vehicles[id]
	if !ok {
		return db.ErrVehicleNotFound
	}
	switch kind {
	case db.NotifyDistance:
		v.NotifiedServiceDistance = true
	case db.NotifyDate:
		v.NotifiedServiceDate = true
	}
	return nil
}

type fakeInsurance struct {
	db.InsuranceStore
	policies map[primitive.ObjectID]*models.Insurance
}

func newFakeInsurance(pols ...*models.Insurance) *fakeInsurance {
	f := &fakeInsurance{policies: make(map[primitive.ObjectID]*models.Insurance)}
	for _, p := range pols {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		f.policies[p.ID] = p
	}
	return f
}

func (f *fakeInsurance) FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.Insurance, error) {
	var out []models.Insurance
	for _, p := range f.policies {
		if p.VehicleID == vehicleID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeInsurance) SetNotified(ctx context.Context, id primitive.ObjectID, band models.NotifyBand) error {
	p, ok := f.policies[id]
	if !ok {
		return db.ErrRecordNotFound
	}
	switch band {
	case models.Band7d:
		p.Notified7d = true
	case models.Band3d:
		p.Notified3d = true
	case models.BandExpired:
		p.NotifiedExpired = true
	}
	return nil
}

type fakeParts struct {
	db.PartStore
	parts map[primitive.ObjectID]*models.Part
}

func newFakeParts(parts ...*models.Part) *fakeParts {
	f := &fakeParts{parts: make(map[primitive.ObjectID]*models.Part)}
	for _, p := range parts {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		f.parts[p.ID] = p
	}
	return f
}

func (f *fakeParts) FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.Part, error) {
	var out []models.Part
	for _, p := range f.parts {
		if p.VehicleID == vehicleID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeParts) SetNotified(ctx context.Context, id primitive.ObjectID) error {
	p, ok := f.parts[id]
	if !ok {
		return db.ErrRecordNotFound
	}
	p.Notified = true
	return nil
}

type fakeDispatcher struct {
	sent []string
	fail bool
}

func (f *fakeDispatcher) Notify(ctx context.Context, chatID int64, text string) error {
	if f.fail {
		return errors.New("broker unavailable")
	}
	f.sent = append(f.sent, text)
	return nil
}

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }
func ptrT(v time.Time) *time.Time {
	return &v
}

func newTestEngine(vehicles *fakeVehicles, insurance *fakeInsurance, parts *fakeParts) (*Engine, *fakeDispatcher) {
	if insurance == nil {
		insurance = newFakeInsurance()
	}
	if parts == nil {
		parts = newFakeParts()
	}
	disp := &fakeDispatcher{}
	return New(vehicles, insurance, parts, disp, testLogger()), disp
}

func TestServiceDistanceDueOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	v := &models.Vehicle{
		OwnerID:             100,
		Brand:               "Toyota",
		Model:               "Camry",
		Odometer:            50100,
		Active:              true,
		LastServiceOdometer: ptrF(40000),
		ServiceIntervalKm:   ptrF(10000),
	}
	vehicles := newFakeVehicles(v)
	eng, disp := newTestEngine(vehicles, nil, nil)

	require.NoError(t, eng.Evaluate(context.Background(), now))
	require.Len(t, disp.sent, 1)
	assert.Contains(t, disp.sent[0], "Service due")
	assert.True(t, v.NotifiedServiceDistance)

	// A second pass over unchanged data must stay silent.
	require.NoError(t, eng.Evaluate(context.Background(), now))
	assert.Len(t, disp.sent, 1)
}

func TestServiceDistanceBoundaryInclusive(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	v := &models.Vehicle{
		OwnerID:             100,
		Odometer:            50000,
		Active:              true,
		LastServiceOdometer: ptrF(40000),
		ServiceIntervalKm:   ptrF(10000),
	}
	eng, disp := newTestEngine(newFakeVehicles(v), nil, nil)

	require.NoError(t, eng.Evaluate(context.Background(), now))
	assert.Len(t, disp.sent, 1)
}

func TestServiceDateUsesThirtyDayMonths(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	v := &models.Vehicle{
		OwnerID:               100,
		Active:                true,
		LastServiceDate:       ptrT(base),
		ServiceIntervalMonths: ptrI(6),
	}
	eng, disp := newTestEngine(newFakeVehicles(v), nil, nil)

	// 179 days in: not yet due.
	require.NoError(t, eng.Evaluate(context.Background(), base.AddDate(0, 0, 179)))
	assert.Empty(t, disp.sent)

	// 180 days in: due.
	require.NoError(t, eng.Evaluate(context.Background(), base.AddDate(0, 0, 180)))
	require.Len(t, disp.sent, 1)
	assert.True(t, v.NotifiedServiceDate)
}

func TestServiceSkippedWithoutBaselineOrInterval(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	vehicles := newFakeVehicles(
		&models.Vehicle{OwnerID: 1, Active: true, Odometer: 90000, ServiceIntervalKm: ptrF(100)},
		&models.Vehicle{OwnerID: 2, Active: true, Odometer: 90000, LastServiceOdometer: ptrF(0)},
	)
	eng, disp := newTestEngine(vehicles, nil, nil)

	require.NoError(t, eng.Evaluate(context.Background(), now))
	assert.Empty(t, disp.sent)
}

func TestInsuranceSevenDayBand(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v := &models.Vehicle{OwnerID: 100, Active: true}
	vehicles := newFakeVehicles(v)
	pol := &models.Insurance{
		VehicleID: v.ID,
		EndDate:   now.AddDate(0, 0, 5),
	}
	insurance := newFakeInsurance(pol)
	eng, disp := newTestEngine(vehicles, insurance, nil)

	require.NoError(t, eng.Evaluate(context.Background(), now))
	require.Len(t, disp.sent, 1)
	assert.Contains(t, disp.sent[0], "5 day(s)")
	assert.True(t, pol.Notified7d)
	assert.False(t, pol.Notified3d)
	assert.False(t, pol.NotifiedExpired)

	// Still five days out, nothing new.
	require.NoError(t, eng.Evaluate(context.Background(), now))
	assert.Len(t, disp.sent, 1)

	// Two days out the closer band fires once.
	later := now.AddDate(0, 0, 3)
	require.NoError(t, eng.Evaluate(context.Background(), later))
	require.Len(t, disp.sent, 2)
	assert.True(t, pol.Notified3d)

	// Past the end date the expiry band fires once.
	expired := now.AddDate(0, 0, 6)
	require.NoError(t, eng.Evaluate(context.Background(), expired))
	require.Len(t, disp.sent, 3)
	assert.Contains(t, disp.sent[2], "expired")
	assert.True(t, pol.NotifiedExpired)

	require.NoError(t, eng.Evaluate(context.Background(), expired))
	assert.Len(t, disp.sent, 3)
}

func TestInsuranceOneBandPerTick(t *testing.T) {
	// A policy discovered already inside the three-day window fires only
	// the most specific band on the first pass.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v := &models.Vehicle{OwnerID: 100, Active: true}
	vehicles := newFakeVehicles(v)
	pol := &models.Insurance{VehicleID: v.ID, EndDate: now.AddDate(0, 0, 2)}
	insurance := newFakeInsurance(pol)
	eng, disp := newTestEngine(vehicles, insurance, nil)

	require.NoError(t, eng.Evaluate(context.Background(), now))
	require.Len(t, disp.sent, 1)
	assert.True(t, pol.Notified3d)
	assert.False(t, pol.Notified7d)
}

func TestPartDueByMileage(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	v := &models.Vehicle{OwnerID: 100, Active: true, Odometer: 62000}
	vehicles := newFakeVehicles(v)
	part := &models.Part{
		VehicleID:    v.ID,
		Name:         "Oil filter",
		LastOdometer: ptrF(52000),
		IntervalKm:   ptrF(10000),
	}
	parts := newFakeParts(part)
	eng, disp := newTestEngine(vehicles, nil, parts)

	require.NoError(t, eng.Evaluate(context.Background(), now))
	require.Len(t, disp.sent, 1)
	assert.Contains(t, disp.sent[0], "Oil filter")
	assert.True(t, part.Notified)

	require.NoError(t, eng.Evaluate(context.Background(), now))
	assert.Len(t, disp.sent, 1)
}

func TestDispatchFailureLeavesFlagUnset(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	v := &models.Vehicle{
		OwnerID:             100,
		Active:              true,
		Odometer:            50000,
		LastServiceOdometer: ptrF(40000),
		ServiceIntervalKm:   ptrF(10000),
	}
	vehicles := newFakeVehicles(v)
	eng, disp := newTestEngine(vehicles, nil, nil)
	disp.fail = true

	require.NoError(t, eng.Evaluate(context.Background(), now))
	assert.Empty(t, disp.sent)
	assert.False(t, v.NotifiedServiceDistance)

	// The next pass retries and succeeds.
	disp.fail = false
	require.NoError(t, eng.Evaluate(context.Background(), now))
	require.Len(t, disp.sent, 1)
	assert.True(t, v.NotifiedServiceDistance)
}

func TestInactiveVehiclesSkipped(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	v := &models.Vehicle{
		OwnerID:             100,
		Active:              false,
		Odometer:            99000,
		LastServiceOdometer: ptrF(0),
		ServiceIntervalKm:   ptrF(100),
	}
	eng, disp := newTestEngine(newFakeVehicles(v), nil, nil)

	require.NoError(t, eng.Evaluate(context.Background(), now))
	assert.Empty(t, disp.sent)
}

func TestNextFire(t *testing.T) {
	sched := NewScheduler(nil, ClockOffsets([]string{"09:00", "18:00"}), testLogger())

	morning := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), sched.nextFire(morning))

	afternoon := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC), sched.nextFire(afternoon))

	night := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), sched.nextFire(night))
}
