package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ukydev/carwise/internal/models"
)

// Config holds the process configuration. It is built once in Load and
// never mutated afterwards.
type Config struct {
	MongoURI  string
	Database  string
	RedisAddr string

	MQTTBroker   string
	MQTTClientID string

	GatewayAddr   string
	JWTSecret     string
	AdminSecret   string // bcrypt hash of the token-issuing secret
	AdminChatIDs  []int64
	SessionTTL    time.Duration
	ReminderTimes []string // "HH:MM", local time

	AdviceBaseURL string
	AdviceAPIKey  string
	AdviceModel   string

	LogLevel string
}

// FuelTypeLabels maps fuel codes to display labels.
var FuelTypeLabels = map[models.FuelType]string{
	models.Fuel92:       "AI-92",
	models.Fuel95:       "AI-95",
	models.Fuel98:       "AI-98",
	models.FuelDiesel:   "Diesel",
	models.FuelGas:      "LPG",
	models.FuelElectric: "Electric",
}

// CategoryLabels maps maintenance category codes to display labels.
var CategoryLabels = map[models.MaintenanceCategory]string{
	models.CategoryService: "Scheduled service",
	models.CategoryRepair:  "Repair",
	models.CategoryTires:   "Tires",
	models.CategoryWash:    "Wash",
	models.CategoryOther:   "Other",
}

// FuelTypeLabel returns the display label for a fuel code, falling back to
// the raw code.
func FuelTypeLabel(ft models.FuelType) string {
	if label, ok := FuelTypeLabels[ft]; ok {
		return label
	}
	return string(ft)
}

// CategoryLabel returns the display label for a maintenance category.
func CategoryLabel(cat models.MaintenanceCategory) string {
	if label, ok := CategoryLabels[cat]; ok {
		return label
	}
	return string(cat)
}

// Load reads configuration from the environment, consulting .env first.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		Database:      getEnv("MONGO_DATABASE", "carwise"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		MQTTBroker:    getEnv("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID:  getEnv("MQTT_CLIENT_ID", "carwise-notifier"),
		GatewayAddr:   getEnv("GATEWAY_ADDR", ":8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminSecret:   os.Getenv("ADMIN_SECRET_HASH"),
		AdviceBaseURL: getEnv("ADVICE_BASE_URL", "https://generativelanguage.googleapis.com"),
		AdviceAPIKey:  os.Getenv("ADVICE_API_KEY"),
		AdviceModel:   getEnv("ADVICE_MODEL", "gemini-1.5-flash"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	ids, err := parseChatIDs(os.Getenv("ADMIN_CHAT_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.AdminChatIDs = ids

	ttl := getEnv("SESSION_TTL", "30m")
	cfg.SessionTTL, err = time.ParseDuration(ttl)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL %q: %w", ttl, err)
	}

	times := getEnv("REMINDER_TIMES", "09:00,12:00,18:00")
	cfg.ReminderTimes, err = parseTimes(times)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsAdmin reports whether the chat id belongs to an administrator.
func (c *Config) IsAdmin(chatID int64) bool {
	for _, id := range c.AdminChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

// FeedbackChatID is the destination for contact-support relays: the first
// configured administrator, or 0 when none is configured.
func (c *Config) FeedbackChatID() int64 {
	if len(c.AdminChatIDs) == 0 {
		return 0
	}
	return c.AdminChatIDs[0]
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseChatIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_CHAT_IDS entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseTimes(raw string) ([]string, error) {
	var times []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if _, err := time.Parse("15:04", part); err != nil {
			return nil, fmt.Errorf("invalid REMINDER_TIMES entry %q: %w", part, err)
		}
		times = append(times, part)
	}
	return times, nil
}
