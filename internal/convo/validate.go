package convo

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Domain ranges for numeric input.
const (
	minYear      = 1900
	maxOdometer  = 5_000_000
	maxLiters    = 10_000
	maxCost      = 100_000_000
	skipSentinel = "-"
)

// parseNumber accepts a decimal number with either '.' or ',' separator.
func parseNumber(text string) (float64, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	return v, nil
}

func parseYear(text string, now time.Time) (int, string) {
	year, err := strconv.Atoi(strings.TrimSpace(text))
	max := now.Year() + 1
	if err != nil {
		return 0, "Please enter a number (for example: 2015)."
	}
	if year < minYear || year > max {
		return 0, fmt.Sprintf("Please enter a valid year (%d-%d).", minYear, max)
	}
	return year, ""
}

func parseOdometer(text string) (float64, string) {
	v, err := parseNumber(text)
	if err != nil {
		return 0, "Please enter a number (for example: 150000)."
	}
	if v < 0 || v > maxOdometer {
		return 0, fmt.Sprintf("Please enter a valid odometer reading (0-%d km).", maxOdometer)
	}
	return v, ""
}

func parseLiters(text string) (float64, string) {
	v, err := parseNumber(text)
	if err != nil {
		return 0, "Please enter a number (for example: 45.5)."
	}
	if v <= 0 || v > maxLiters {
		return 0, fmt.Sprintf("Please enter a positive amount below %d liters.", maxLiters)
	}
	return v, ""
}

func parseCost(text string) (float64, string) {
	v, err := parseNumber(text)
	if err != nil {
		return 0, "Please enter a number (for example: 2500)."
	}
	if v <= 0 || v > maxCost {
		return 0, "Please enter a positive amount."
	}
	return v, ""
}

// parseInterval accepts a non-negative number where zero means "disabled".
func parseInterval(text string) (float64, string) {
	v, err := parseNumber(text)
	if err != nil {
		return 0, "Please enter a number (for example: 10000, or 0 to disable)."
	}
	if v < 0 {
		return 0, "The interval cannot be negative. Enter 0 or more."
	}
	return v, ""
}

// parseDate accepts DD.MM.YYYY.
func parseDate(text string) (time.Time, string) {
	d, err := time.Parse("02.01.2006", strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, "Invalid format. Enter the date as DD.MM.YYYY (for example: 31.12.2026)."
	}
	return d, ""
}

func formatKm(v float64) string {
	return fmt.Sprintf("%.0f km", v)
}
