package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	// Contest Korea (list-parameter pagination)
	ContestKoreaURL      string
	ContestKoreaBaseURL  string
	ContestKoreaMaxPages int
	ContestKoreaSnapshot string

	// ICS competitions (next-link pagination)
	ICSURL      string
	ICSBaseURL  string
	ICSMaxPages int
	ICSSnapshot string

	// Harvest pacing
	PageDelay      time.Duration
	RequestTimeout time.Duration

	// Scheduler
	RefreshSchedule string

	// Redis configuration, publishing is disabled when RedisAddr is empty
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Memcache configuration for the cross-process harvest lock; the lock is process-local when empty
	MemcacheAddr string

	// File that receives one line per failed harvest
	ErrorLogFile string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		ContestKoreaURL:      getEnv("CONTESTKOREA_URL", "https://www.contestkorea.com/sub/list.php"),
		ContestKoreaBaseURL:  getEnv("CONTESTKOREA_BASE_URL", "https://www.contestkorea.com"),
		ContestKoreaMaxPages: getEnvInt("CONTESTKOREA_MAX_PAGES", 20),
		ContestKoreaSnapshot: getEnv("CONTESTKOREA_SNAPSHOT", "contests_korea.json"),
		ICSURL:               getEnv("ICS_URL", "https://www.competitionsciences.org/competitions/"),
		ICSBaseURL:           getEnv("ICS_BASE_URL", "https://www.competitionsciences.org"),
		ICSMaxPages:          getEnvInt("ICS_MAX_PAGES", 56),
		ICSSnapshot:          getEnv("ICS_SNAPSHOT", "ics_competitions.json"),
		PageDelay:            time.Duration(getEnvInt("PAGE_DELAY_MS", 1000)) * time.Millisecond,
		RequestTimeout:       time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
		RefreshSchedule:      getEnv("REFRESH_SCHEDULE", "5 0 * * *"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "contests"),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 100),
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		ErrorLogFile:         getEnv("ERROR_LOG_FILE", "harvest_error.log"),
		Environment:          getEnv("HARVEST_ENVIRONMENT", "development"),
	}
}

// Validate checks the values LoadConfig could not reject on its own.
func (c *Config) Validate() error {
	if c.ContestKoreaURL == "" || c.ICSURL == "" {
		return fmt.Errorf("source URLs must not be empty")
	}
	if c.ContestKoreaSnapshot == "" || c.ICSSnapshot == "" {
		return fmt.Errorf("snapshot paths must not be empty")
	}
	if c.ContestKoreaMaxPages < 0 || c.ICSMaxPages < 0 {
		return fmt.Errorf("page budgets must be >= 0 (0 means unbounded)")
	}
	if c.PageDelay < 0 {
		return fmt.Errorf("page delay must be >= 0, got %s", c.PageDelay)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be > 0, got %s", c.RequestTimeout)
	}
	if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
		return fmt.Errorf("invalid REFRESH_SCHEDULE %q: %w", c.RefreshSchedule, err)
	}
	if c.RedisAddr != "" && c.RedisStream == "" {
		return fmt.Errorf("REDIS_STREAM must be set when REDIS_ADDR is set")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt parses an integer environment variable, falling back to the default
// when it is unset or malformed.
func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}
