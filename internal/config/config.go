package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/verticalview/client-portal/internal/core/domain"
	"github.com/verticalview/client-portal/internal/core/relation"
	"github.com/verticalview/client-portal/internal/infrastructure/resilience"
)

const (
	PlaceholderAPIKey = "YOUR_AIRTABLE_API_KEY"
	PlaceholderBaseID = "YOUR_AIRTABLE_BASE_ID"
)

type Config struct {
	APIPort  string
	LogLevel string

	AirtableAPIKey         string
	AirtableBaseID         string
	AirtableAPIURL         string
	AirtableRateLimitRPS   float64
	AirtableTimeoutSeconds int

	TableClients   string
	TableContracts string
	TableVideos    string
	TableTeam      string
	TableFeedbacks string

	StoreRetryMaxAttempts          int
	StoreBreakerEnabled            bool
	StoreBreakerMinRequests        int
	StoreBreakerFailureRatio       float64
	StoreBreakerOpenTimeoutSeconds int

	APIVideoResolution    string
	APITeamScope          string
	MCPVideoResolution    string
	MCPTeamScope          string
	PortalVideoResolution string
	PortalTeamScope       string

	APIRateLimitRPS       float64
	APIRateLimitBurst     int
	APIMaxInFlight        int
	APIBackpressureWaitMS int
	APIOpenAPIValidation  bool

	NATSURL     string
	NATSSubject string

	ReviewJournalDSN string
	ExportDir        string

	MCPMetricsPort       string
	PortalRefreshSeconds int
}

// Load reads an optional dotenv file (PORTAL_ENV_FILE, default .env) and then
// the process environment. Variables already set in the environment win.
func Load() Config {
	loadDotEnv(mustEnv("PORTAL_ENV_FILE", ".env"))

	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		AirtableAPIKey:         firstEnv(PlaceholderAPIKey, "AIRTABLE_API_KEY", "VITE_AIRTABLE_API_KEY"),
		AirtableBaseID:         firstEnv(PlaceholderBaseID, "AIRTABLE_BASE_ID", "VITE_AIRTABLE_BASE_ID"),
		AirtableAPIURL:         mustEnv("AIRTABLE_API_URL", "https://api.airtable.com/v0"),
		AirtableRateLimitRPS:   mustEnvFloat("AIRTABLE_RATE_LIMIT_RPS", 5),
		AirtableTimeoutSeconds: mustEnvInt("AIRTABLE_TIMEOUT_SECONDS", 30),

		TableClients:   mustEnv("AIRTABLE_TABLE_CLIENTS", "Clients"),
		TableContracts: mustEnv("AIRTABLE_TABLE_CONTRACTS", "Contrats"),
		TableVideos:    mustEnv("AIRTABLE_TABLE_VIDEOS", "Vidéos"),
		TableTeam:      mustEnv("AIRTABLE_TABLE_TEAM", "Équipe"),
		TableFeedbacks: mustEnv("AIRTABLE_TABLE_FEEDBACKS", "Feedbacks"),

		StoreRetryMaxAttempts:          mustEnvInt("STORE_RETRY_MAX_ATTEMPTS", 1),
		StoreBreakerEnabled:            mustEnvBool("STORE_BREAKER_ENABLED", true),
		StoreBreakerMinRequests:        mustEnvInt("STORE_BREAKER_MIN_REQUESTS", 10),
		StoreBreakerFailureRatio:       mustEnvFloat("STORE_BREAKER_FAILURE_RATIO", 0.5),
		StoreBreakerOpenTimeoutSeconds: mustEnvInt("STORE_BREAKER_OPEN_TIMEOUT_SECONDS", 30),

		APIVideoResolution:    mustEnv("API_VIDEO_RESOLUTION", string(relation.VideoViaLinkedClient)),
		APITeamScope:          mustEnv("API_TEAM_SCOPE", string(relation.TeamByClient)),
		MCPVideoResolution:    mustEnv("MCP_VIDEO_RESOLUTION", string(relation.VideoViaShootSession)),
		MCPTeamScope:          mustEnv("MCP_TEAM_SCOPE", string(relation.TeamByRole)),
		PortalVideoResolution: mustEnv("PORTAL_VIDEO_RESOLUTION", string(relation.VideoViaLinkedClient)),
		PortalTeamScope:       mustEnv("PORTAL_TEAM_SCOPE", string(relation.TeamByRole)),

		APIRateLimitRPS:       mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst:     mustEnvInt("API_RATE_LIMIT_BURST", 20),
		APIMaxInFlight:        mustEnvInt("API_MAX_IN_FLIGHT", 0),
		APIBackpressureWaitMS: mustEnvInt("API_BACKPRESSURE_WAIT_MS", 250),
		APIOpenAPIValidation:  mustEnvBool("API_OPENAPI_VALIDATION", true),

		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "portal.video.review"),

		ReviewJournalDSN: mustEnv("REVIEW_JOURNAL_DSN", ""),
		ExportDir:        mustEnv("PORTAL_EXPORT_DIR", "./exports"),

		MCPMetricsPort:       mustEnv("MCP_METRICS_PORT", ""),
		PortalRefreshSeconds: mustEnvInt("PORTAL_REFRESH_SECONDS", 60),
	}
}

// ValidateStore fails when the store credentials are missing or still the
// shipped placeholders.
func (c Config) ValidateStore() error {
	key := strings.TrimSpace(c.AirtableAPIKey)
	if key == "" || key == PlaceholderAPIKey {
		return domain.NewError(domain.ErrConfiguration, "validate config", "AIRTABLE_API_KEY is not set")
	}
	base := strings.TrimSpace(c.AirtableBaseID)
	if base == "" || base == PlaceholderBaseID {
		return domain.NewError(domain.ErrConfiguration, "validate config", "AIRTABLE_BASE_ID is not set")
	}
	return nil
}

func (c Config) Tables() domain.Tables {
	return domain.Tables{
		Clients:   c.TableClients,
		Contracts: c.TableContracts,
		Videos:    c.TableVideos,
		Team:      c.TableTeam,
		Feedbacks: c.TableFeedbacks,
	}
}

func (c Config) APIPolicy() (relation.Policy, error) {
	return parsePolicy("API", c.APIVideoResolution, c.APITeamScope)
}

func (c Config) MCPPolicy() (relation.Policy, error) {
	return parsePolicy("MCP", c.MCPVideoResolution, c.MCPTeamScope)
}

func (c Config) PortalPolicy() (relation.Policy, error) {
	return parsePolicy("PORTAL", c.PortalVideoResolution, c.PortalTeamScope)
}

func (c Config) Resilience() resilience.Config {
	cfg := resilience.DefaultConfig()
	cfg.Retry.MaxAttempts = c.StoreRetryMaxAttempts
	cfg.Breaker.Enabled = c.StoreBreakerEnabled
	if c.StoreBreakerMinRequests > 0 {
		cfg.Breaker.MinRequests = uint32(c.StoreBreakerMinRequests)
	}
	cfg.Breaker.FailureRatio = c.StoreBreakerFailureRatio
	cfg.Breaker.OpenTimeout = time.Duration(c.StoreBreakerOpenTimeoutSeconds) * time.Second
	return cfg
}

func parsePolicy(prefix, videos, team string) (relation.Policy, error) {
	strategy, err := relation.ParseVideoStrategy(videos)
	if err != nil {
		return relation.Policy{}, domain.WrapError(domain.ErrConfiguration, prefix+"_VIDEO_RESOLUTION", err)
	}
	scope, err := relation.ParseTeamScope(team)
	if err != nil {
		return relation.Policy{}, domain.WrapError(domain.ErrConfiguration, prefix+"_TEAM_SCOPE", err)
	}
	return relation.Policy{Videos: strategy, Team: scope}, nil
}

func loadDotEnv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("dotenv_load_failed", "path", path, "error", fmt.Sprint(err))
	}
}

func firstEnv(fallback string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return fallback
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
