package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ukydev/carwise/internal/advice"
	"github.com/ukydev/carwise/internal/config"
	"github.com/ukydev/carwise/internal/convo"
	"github.com/ukydev/carwise/internal/db"
	"github.com/ukydev/carwise/internal/models"
)

const helpText = `Commands:
/addcar - register a vehicle
/vehicles - list your vehicles and reminder settings
/odometer - update an odometer reading
/fuel - log a refueling
/maintenance - log maintenance or a repair
/insurance - add an insurance policy
/policies - list insurance policies
/reminders - configure service reminders
/stats - spending and consumption statistics
/export - download your history as CSV
/advice - maintenance advice (premium)
/delete - remove a vehicle
/support - message the team
/cancel - abandon the current entry`

// parseCommand splits "/cmd arg..." into its name and argument string.
func parseCommand(text string) (string, string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	cmd, args, _ := strings.Cut(text[1:], " ")
	cmd = strings.ToLower(cmd)
	// Strip an @botname suffix some bridges append.
	if at := strings.Index(cmd, "@"); at != -1 {
		cmd = cmd[:at]
	}
	if cmd == "" {
		return "", "", false
	}
	return cmd, strings.TrimSpace(args), true
}

var commandFlows = map[string]convo.FlowKind{
	"addcar":      convo.FlowRegisterVehicle,
	"odometer":    convo.FlowUpdateOdometer,
	"delete":      convo.FlowDeleteVehicle,
	"fuel":        convo.FlowLogFuel,
	"maintenance": convo.FlowLogMaintenance,
	"insurance":   convo.FlowAddInsurance,
	"reminders":   convo.FlowConfigureReminder,
	"support":     convo.FlowContactSupport,
}

func (g *Gateway) handleCommand(ctx context.Context, chatID int64, req updateRequest, cmd, args string) (*updateResponse, error) {
	if kind, ok := commandFlows[cmd]; ok {
		_, res, err := g.engine.Start(ctx, kind, chatID)
		if err != nil {
			return nil, err
		}
		return fromResult(res), nil
	}

	switch cmd {
	case "start":
		return g.cmdStart(ctx, chatID, req)
	case "help":
		return &updateResponse{Text: helpText}, nil
	case "cancel":
		return g.cmdCancel(ctx, chatID)
	case "vehicles":
		return g.cmdVehicles(ctx, chatID)
	case "policies":
		return g.cmdPolicies(ctx, chatID)
	case "stats":
		return g.cmdStats(ctx, chatID)
	case "export":
		return g.cmdExport(ctx, chatID)
	case "advice":
		return g.cmdAdvice(ctx, chatID)
	default:
		return &updateResponse{Text: "Unknown command. Send /help for the list."}, nil
	}
}

func (g *Gateway) cmdStart(ctx context.Context, chatID int64, req updateRequest) (*updateResponse, error) {
	user, err := g.stores.Users.Ensure(ctx, models.User{
		ChatID:    chatID,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Hi, %s! I keep track of your cars: fuel, maintenance, "+
		"insurance and service reminders.\n\nStart with /addcar, or send /help for "+
		"everything I can do.", user.DisplayName())
	return &updateResponse{Text: text}, nil
}

func (g *Gateway) cmdCancel(ctx context.Context, chatID int64) (*updateResponse, error) {
	s, err := g.engine.Resume(ctx, chatID)
	if errors.Is(err, convo.ErrNoSession) {
		return &updateResponse{Text: "Nothing to cancel."}, nil
	}
	if err != nil {
		return nil, err
	}
	res, err := g.engine.Submit(ctx, s, convo.TextInput("/cancel"))
	if err != nil {
		return nil, err
	}
	return fromResult(res), nil
}

func (g *Gateway) cmdVehicles(ctx context.Context, chatID int64) (*updateResponse, error) {
	vehicles, err := g.stores.Vehicles.FindActiveByOwner(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if len(vehicles) == 0 {
		return &updateResponse{Text: "You have no vehicles yet. Use /addcar to register one."}, nil
	}

	var b strings.Builder
	b.WriteString("Your vehicles:\n")
	for i, v := range vehicles {
		fmt.Fprintf(&b, "\n%d. %s, %d\n", i+1, v.Label(), v.Year)
		fmt.Fprintf(&b, "   Odometer: %.0f km, fuel: %s\n", v.Odometer, config.FuelTypeLabel(v.FuelType))
		b.WriteString("   Service reminders: " + describeReminders(&v) + "\n")
	}
	return &updateResponse{Text: strings.TrimRight(b.String(), "\n")}, nil
}

// describeReminders renders the vehicle's reminder configuration and how
// far along each interval it is.
func describeReminders(v *models.Vehicle) string {
	if v.ServiceIntervalKm == nil && v.ServiceIntervalMonths == nil {
		return "off (/reminders to configure)"
	}
	var parts []string
	if v.ServiceIntervalKm != nil {
		p := fmt.Sprintf("every %.0f km", *v.ServiceIntervalKm)
		if v.LastServiceOdometer != nil {
			p += fmt.Sprintf(" (%.0f km since service)", v.Odometer-*v.LastServiceOdometer)
		}
		parts = append(parts, p)
	}
	if v.ServiceIntervalMonths != nil {
		p := fmt.Sprintf("every %d months", *v.ServiceIntervalMonths)
		if v.LastServiceDate != nil {
			p += fmt.Sprintf(" (last service %s)", v.LastServiceDate.Format("02.01.2006"))
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ", ")
}

func (g *Gateway) cmdPolicies(ctx context.Context, chatID int64) (*updateResponse, error) {
	vehicles, err := g.stores.Vehicles.FindActiveByOwner(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if len(vehicles) == 0 {
		return &updateResponse{Text: "You have no vehicles yet. Use /addcar to register one."}, nil
	}

	now := time.Now()
	var b strings.Builder
	total := 0
	for _, v := range vehicles {
		policies, err := g.stores.Insurance.FindByVehicle(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		if len(policies) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", v.Label())
		for _, pol := range policies {
			total++
			fmt.Fprintf(&b, "  until %s", pol.EndDate.Format("02.01.2006"))
			if pol.Company != "" {
				fmt.Fprintf(&b, ", %s", pol.Company)
			}
			if pol.PolicyNumber != "" {
				fmt.Fprintf(&b, ", %s", pol.PolicyNumber)
			}
			if days := pol.DaysLeft(now); days <= 0 {
				b.WriteString(" [expired]")
			} else if days <= 7 {
				fmt.Fprintf(&b, " [%d day(s) left]", days)
			}
			b.WriteString("\n")
		}
	}
	if total == 0 {
		return &updateResponse{Text: "No insurance policies recorded. Use /insurance to add one."}, nil
	}
	return &updateResponse{Text: strings.TrimRight(b.String(), "\n")}, nil
}

func (g *Gateway) cmdStats(ctx context.Context, chatID int64) (*updateResponse, error) {
	vehicles, err := g.stores.Vehicles.FindActiveByOwner(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if len(vehicles) == 0 {
		return &updateResponse{Text: "You have no vehicles yet. Use /addcar to register one."}, nil
	}

	var reports []string
	for _, v := range vehicles {
		st, err := g.stats.Collect(ctx, v)
		if err != nil {
			return nil, err
		}
		reports = append(reports, st.Report())
	}
	return &updateResponse{Text: strings.Join(reports, "\n\n")}, nil
}

func (g *Gateway) cmdExport(ctx context.Context, chatID int64) (*updateResponse, error) {
	var buf bytes.Buffer
	if err := g.exporter.WriteCSV(ctx, chatID, &buf); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("carwise-%s.csv", time.Now().Format("2006-01-02"))
	return &updateResponse{
		Text: "Here is your history export.",
		File: &fileAttach{Name: name, Content: buf.Bytes()},
	}, nil
}

func (g *Gateway) cmdAdvice(ctx context.Context, chatID int64) (*updateResponse, error) {
	if !g.advisor.Enabled() {
		return &updateResponse{Text: "Advice is not available right now."}, nil
	}

	user, err := g.stores.Users.FindByChatID(ctx, chatID)
	if errors.Is(err, db.ErrUserNotFound) {
		return &updateResponse{Text: "Send /start first."}, nil
	}
	if err != nil {
		return nil, err
	}
	if !user.Premium && !g.cfg.IsAdmin(chatID) {
		return &updateResponse{Text: "Advice is available to premium users only."}, nil
	}

	vehicles, err := g.stores.Vehicles.FindActiveByOwner(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if len(vehicles) == 0 {
		return &updateResponse{Text: "You have no vehicles yet. Use /addcar to register one."}, nil
	}

	var facts []string
	for _, v := range vehicles {
		st, err := g.stats.Collect(ctx, v)
		if err != nil {
			return nil, err
		}
		facts = append(facts, st.PromptContext(config.FuelTypeLabel))
	}

	answer, err := g.advisor.Advise(ctx, strings.Join(facts, "\n\n"))
	if errors.Is(err, advice.ErrDisabled) {
		return &updateResponse{Text: "Advice is not available right now."}, nil
	}
	if err != nil {
		g.log.WithError(err).WithField("chat_id", chatID).Warn("advice request failed")
		return &updateResponse{Text: "Could not get advice right now. Try again later."}, nil
	}
	return &updateResponse{Text: answer}, nil
}
