package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"leadtime/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Feed      FeedConfig
	Work      WorkConfig
	Forecast  ForecastConfig
	Calendars CalendarConfig
}

// FeedConfig holds the default feed source for the HTTP server
type FeedConfig struct {
	Source string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds database connection settings. The URL is only
// required by commands that persist (sync, api).
type DatabaseConfig struct {
	URL string
}

// WorkConfig holds working-week settings
type WorkConfig struct {
	Week []time.Weekday
}

// ForecastConfig holds decay-weighting settings
type ForecastConfig struct {
	HalflifeDays float64
}

// CalendarConfig holds holiday and vacation calendar paths. Reserved
// for future day-counting policy: accepted and carried, not yet applied
// by the aggregation pipeline.
type CalendarConfig struct {
	HolidayFile  string
	VacationFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	_ = godotenv.Load() // ./.env, if present

	config := &Config{
		Server:   loadServerConfig(),
		Database: loadDatabaseConfig(),
		Feed:     FeedConfig{Source: getEnvOrDefault("FEED_SOURCE", "")},
		Forecast: loadForecastConfig(),
		Calendars: CalendarConfig{
			HolidayFile:  getEnvOrDefault("HOLIDAY_CALENDAR", ""),
			VacationFile: getEnvOrDefault("VACATION_CALENDAR", ""),
		},
	}

	work, err := loadWorkConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load working-week configuration")
	}
	config.Work = *work

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL: getEnvOrDefault("DATABASE_URL", ""),
	}
}

func loadForecastConfig() ForecastConfig {
	return ForecastConfig{
		HalflifeDays: getEnvFloatOrDefault("FORECAST_HALFLIFE", 45),
	}
}

// weekdayNames maps the two-letter day codes used in WORK_WEEK
var weekdayNames = map[string]time.Weekday{
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
	"SU": time.Sunday,
}

func loadWorkConfig() (*WorkConfig, error) {
	raw := getEnvOrDefault("WORK_WEEK", "MO,TU,WE,TH,FR")
	week := make([]time.Weekday, 0, 7)
	for _, code := range strings.Split(raw, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		day, ok := weekdayNames[code]
		if !ok {
			return nil, errors.ConfigInvalid("WORK_WEEK contains unknown day code " + code)
		}
		week = append(week, day)
	}
	return &WorkConfig{Week: week}, nil
}

func validateConfig(config *Config) error {
	if len(config.Work.Week) == 0 {
		return errors.ConfigInvalid("working week is empty")
	}
	if config.Forecast.HalflifeDays <= 0 {
		return errors.ConfigInvalid("forecast halflife must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
