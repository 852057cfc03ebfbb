// Package export renders a chat's full history as CSV. The file uses a
// semicolon separator and carries a UTF-8 byte order mark so spreadsheet
// applications open it with the right encoding and columns.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ukydev/carwise/internal/config"
	"github.com/ukydev/carwise/internal/db"
	"github.com/ukydev/carwise/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const dateLayout = "02.01.2006"

var header = []string{
	"Vehicle", "Record type", "Date", "Category", "Description",
	"Liters", "Fuel type", "Odometer (km)", "Cost", "Valid until",
}

// Exporter writes CSV reports of everything a chat has recorded.
type Exporter struct {
	stores *db.Stores
}

// New builds an exporter over the stores.
func New(stores *db.Stores) *Exporter {
	return &Exporter{stores: stores}
}

// WriteCSV streams one row per fuel, maintenance, insurance and part
// record of every active vehicle the chat owns, grouped by vehicle.
func (e *Exporter) WriteCSV(ctx context.Context, chatID int64, w io.Writer) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(header); err != nil {
		return err
	}

	vehicles, err := e.stores.Vehicles.FindActiveByOwner(ctx, chatID)
	if err != nil {
		return fmt.Errorf("vehicle read failed: %w", err)
	}
	for _, v := range vehicles {
		if err := e.writeVehicle(ctx, cw, v); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (e *Exporter) writeVehicle(ctx context.Context, cw *csv.Writer, v models.Vehicle) error {
	label := v.Label()

	fuel, err := e.stores.Fuel.FindByVehicle(ctx, v.ID)
	if err != nil {
		return fmt.Errorf("fuel read failed: %w", err)
	}
	for _, ev := range fuel {
		row := emptyRow(label, "Fuel", ev.Date)
		row[5] = formatFloat(ev.Liters)
		row[6] = config.FuelTypeLabel(ev.FuelType)
		row[7] = formatOptional(ev.Odometer)
		row[8] = formatFloat(ev.Cost)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	maint, err := e.stores.Maintenance.FindByVehicle(ctx, v.ID)
	if err != nil {
		return fmt.Errorf("maintenance read failed: %w", err)
	}
	for _, ev := range maint {
		row := emptyRow(label, "Maintenance", ev.Date)
		row[3] = config.CategoryLabel(ev.Category)
		row[4] = ev.Description
		row[7] = formatOptional(ev.Odometer)
		row[8] = formatFloat(ev.Cost)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	policies, err := e.stores.Insurance.FindByVehicle(ctx, v.ID)
	if err != nil {
		return fmt.Errorf("insurance read failed: %w", err)
	}
	for _, pol := range policies {
		row := emptyRow(label, "Insurance", pol.StartDate)
		row[4] = policyDescription(pol)
		row[8] = formatFloat(pol.Cost)
		row[9] = pol.EndDate.Format(dateLayout)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	parts, err := e.stores.Parts.FindByVehicle(ctx, v.ID)
	if err != nil {
		return fmt.Errorf("part read failed: %w", err)
	}
	for _, part := range parts {
		row := emptyRow(label, "Recurring item", partDate(part))
		row[4] = partDescription(part)
		row[7] = formatOptional(part.LastOdometer)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func emptyRow(label, kind string, date time.Time) []string {
	row := make([]string, len(header))
	row[0] = label
	row[1] = kind
	if !date.IsZero() {
		row[2] = date.Format(dateLayout)
	}
	return row
}

func policyDescription(pol models.Insurance) string {
	desc := pol.Company
	if pol.PolicyNumber != "" {
		if desc != "" {
			desc += ", "
		}
		desc += pol.PolicyNumber
	}
	if pol.Notes != "" {
		if desc != "" {
			desc += ", "
		}
		desc += pol.Notes
	}
	return desc
}

func partDescription(part models.Part) string {
	desc := part.Name
	if part.IntervalKm != nil {
		desc += fmt.Sprintf(", every %s km", formatFloat(*part.IntervalKm))
	}
	if part.IntervalMonths != nil {
		desc += fmt.Sprintf(", every %d months", *part.IntervalMonths)
	}
	return desc
}

func partDate(part models.Part) time.Time {
	if part.LastDate != nil {
		return *part.LastDate
	}
	return time.Time{}
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
