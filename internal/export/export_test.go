package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/carwise/internal/db"
	"github.com/ukydev/carwise/internal/models"
)

type fakeVehicles struct {
	db.VehicleStore
	vehicles []models.Vehicle
}

func (f *fakeVehicles) FindActiveByOwner(ctx context.Context, ownerID int64) ([]models.Vehicle, error) {
	var out []models.Vehicle
	for _, v := range f.vehicles {
		if v.OwnerID == ownerID && v.Active {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeFuel struct {
	db.FuelStore
	events []models.FuelEvent
}

func (f *fakeFuel) FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.FuelEvent, error) {
	var out []models.FuelEvent
	for _, ev := range f.events {
		if ev.VehicleID == vehicleID {
			out = append(out, ev)
		}
	}
	return out, nil
}

type fakeMaint struct {
	db.MaintenanceStore
	events []models.MaintenanceEvent
}

func (f *fakeMaint) FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.MaintenanceEvent, error) {
	var out []models.MaintenanceEvent
	for _, ev := range f.events {
		if ev.VehicleID == vehicleID {
			out = append(out, ev)
		}
	}
	return out, nil
}

type fakeIns struct {
	db.InsuranceStore
	policies []models.Insurance
}

func (f *fakeIns) FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.Insurance, error) {
	var out []models.Insurance
	for _, pol := range f.policies {
		if pol.VehicleID == vehicleID {
			out = append(out, pol)
		}
	}
	return out, nil
}

type fakeParts struct {
	db.PartStore
	parts []models.Part
}

func (f *fakeParts) FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.Part, error) {
	var out []models.Part
	for _, p := range f.parts {
		if p.VehicleID == vehicleID {
			out = append(out, p)
		}
	}
	return out, nil
}

func ptrF(v float64) *float64 { return &v }

func TestWriteCSV(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC) }
	vehicleID := primitive.NewObjectID()
	v := models.Vehicle{ID: vehicleID, OwnerID: 42, Brand: "Kia", Model: "Rio", Active: true}

	stores := &db.Stores{
		Vehicles: &fakeVehicles{vehicles: []models.Vehicle{v}},
		Fuel: &fakeFuel{events: []models.FuelEvent{
			{VehicleID: vehicleID, Liters: 40.5, Cost: 2100, Odometer: ptrF(15000), FuelType: models.Fuel95, Date: day(1)},
		}},
		Maintenance: &fakeMaint{events: []models.MaintenanceEvent{
			{VehicleID: vehicleID, Category: models.CategoryService, Description: "Oil change", Cost: 5000, Date: day(3)},
		}},
		Insurance: &fakeIns{policies: []models.Insurance{
			{VehicleID: vehicleID, Company: "Acme", PolicyNumber: "P-1", Cost: 12000, StartDate: day(5), EndDate: day(25)},
		}},
		Parts: &fakeParts{parts: []models.Part{
			{VehicleID: vehicleID, Name: "Air filter", IntervalKm: ptrF(15000)},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, New(stores).WriteCSV(context.Background(), 42, &buf))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}), "missing UTF-8 BOM")

	r := csv.NewReader(bytes.NewReader(raw[3:]))
	r.Comma = ';'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5) // header + one row per record

	assert.Equal(t, header, rows[0])

	fuel := rows[1]
	assert.Equal(t, "Kia Rio", fuel[0])
	assert.Equal(t, "Fuel", fuel[1])
	assert.Equal(t, "01.02.2026", fuel[2])
	assert.Equal(t, "40.5", fuel[5])
	assert.Equal(t, "15000", fuel[7])

	maint := rows[2]
	assert.Equal(t, "Maintenance", maint[1])
	assert.Equal(t, "Oil change", maint[4])
	assert.Equal(t, "5000", maint[8])

	ins := rows[3]
	assert.Equal(t, "Insurance", ins[1])
	assert.Contains(t, ins[4], "Acme")
	assert.Equal(t, "25.02.2026", ins[9])

	part := rows[4]
	assert.Equal(t, "Recurring item", part[1])
	assert.Contains(t, part[4], "Air filter")
}

func TestWriteCSVNoVehicles(t *testing.T) {
	stores := &db.Stores{Vehicles: &fakeVehicles{}}
	var buf bytes.Buffer
	require.NoError(t, New(stores).WriteCSV(context.Background(), 7, &buf))

	r := csv.NewReader(bytes.NewReader(buf.Bytes()[3:]))
	r.Comma = ';'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
