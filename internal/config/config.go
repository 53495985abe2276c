package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/clubroyale/auction-league/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	HTTPAddr                string
	DBURL                   string
	DBDisablePreparedBinary bool
	CORSAllowedOrigins      []string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	LogLevel                logging.Level

	SeasonStart     time.Time
	SettleInterval  time.Duration
	SettleBatchSize int
	SweepInterval   time.Duration

	InternalJobToken string

	SessiondBaseURL             string
	SessiondIntrospectPath      string
	SessiondAdminKey            string
	SessiondTimeout             time.Duration
	SessiondCircuitEnabled      bool
	SessiondCircuitFailureCount int
	SessiondCircuitOpenTimeout  time.Duration
	SessiondCircuitHalfOpenReq  int

	UptraceEnabled     bool
	UptraceDSN         string
	UptraceLogsEnabled bool

	LogShipEnabled  bool
	LogShipEndpoint string
	LogShipToken    string
	LogShipTimeout  time.Duration
	LogShipMinLevel logging.Level

	PprofEnabled bool
	PprofAddr    string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	logShipEnabled, err := strconv.ParseBool(getEnv("LOGSHIP_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LOGSHIP_ENABLED: %w", err)
	}
	logShipEndpoint := strings.TrimSpace(getEnv("LOGSHIP_ENDPOINT", ""))
	if logShipEnabled && logShipEndpoint == "" {
		return Config{}, fmt.Errorf("LOGSHIP_ENDPOINT is required when LOGSHIP_ENABLED=true")
	}
	logShipTimeout, err := time.ParseDuration(getEnv("LOGSHIP_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LOGSHIP_TIMEOUT: %w", err)
	}
	if logShipTimeout <= 0 {
		return Config{}, fmt.Errorf("LOGSHIP_TIMEOUT must be > 0")
	}
	logShipMinLevel := parseLogLevel(getEnv("LOGSHIP_MIN_LEVEL", "error"))

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	seasonStart, err := parseSeasonStart(getEnv("SEASON_START", "2026-09-15"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SEASON_START: %w", err)
	}

	settleInterval, err := time.ParseDuration(getEnv("SETTLE_INTERVAL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SETTLE_INTERVAL: %w", err)
	}
	if settleInterval <= 0 {
		return Config{}, fmt.Errorf("SETTLE_INTERVAL must be > 0")
	}

	settleBatchSize, err := getEnvAsInt("SETTLE_BATCH_SIZE", 50)
	if err != nil {
		return Config{}, fmt.Errorf("parse SETTLE_BATCH_SIZE: %w", err)
	}
	if settleBatchSize < 1 {
		return Config{}, fmt.Errorf("SETTLE_BATCH_SIZE must be >= 1")
	}

	sweepInterval, err := time.ParseDuration(getEnv("SWEEP_INTERVAL", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWEEP_INTERVAL: %w", err)
	}
	if sweepInterval <= 0 {
		return Config{}, fmt.Errorf("SWEEP_INTERVAL must be > 0")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	sessiondTimeout, err := time.ParseDuration(getEnv("SESSIOND_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SESSIOND_TIMEOUT: %w", err)
	}

	sessiondCircuitEnabled, err := strconv.ParseBool(getEnv("SESSIOND_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SESSIOND_CIRCUIT_ENABLED: %w", err)
	}

	sessiondCircuitFailureCount, err := getEnvAsInt("SESSIOND_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SESSIOND_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if sessiondCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("SESSIOND_CIRCUIT_FAILURE_COUNT must be >= 1")
	}

	sessiondCircuitOpenTimeout, err := time.ParseDuration(getEnv("SESSIOND_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SESSIOND_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if sessiondCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("SESSIOND_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}

	sessiondCircuitHalfOpenReq, err := getEnvAsInt("SESSIOND_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SESSIOND_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if sessiondCircuitHalfOpenReq < 1 {
		return Config{}, fmt.Errorf("SESSIOND_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cfg := Config{
		AppEnv:                  appEnv,
		ServiceName:             getEnv("APP_SERVICE_NAME", "auction-league-api"),
		ServiceVersion:          getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                   getEnv("DB_URL", ""),
		DBDisablePreparedBinary: dbDisablePreparedBinary,
		CORSAllowedOrigins:      splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:             readTimeout,
		WriteTimeout:            writeTimeout,
		LogLevel:                parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		SeasonStart:     seasonStart,
		SettleInterval:  settleInterval,
		SettleBatchSize: settleBatchSize,
		SweepInterval:   sweepInterval,

		InternalJobToken: strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),

		SessiondBaseURL:             getEnv("SESSIOND_BASE_URL", "http://localhost:8081"),
		SessiondIntrospectPath:      getEnv("SESSIOND_INTROSPECT_PATH", "/v1/auth/introspect"),
		SessiondAdminKey:            getEnv("SESSIOND_ADMIN_KEY", ""),
		SessiondTimeout:             sessiondTimeout,
		SessiondCircuitEnabled:      sessiondCircuitEnabled,
		SessiondCircuitFailureCount: sessiondCircuitFailureCount,
		SessiondCircuitOpenTimeout:  sessiondCircuitOpenTimeout,
		SessiondCircuitHalfOpenReq:  sessiondCircuitHalfOpenReq,

		UptraceEnabled:     uptraceEnabled,
		UptraceDSN:         uptraceDSN,
		UptraceLogsEnabled: uptraceLogsEnabled,

		LogShipEnabled:  logShipEnabled,
		LogShipEndpoint: logShipEndpoint,
		LogShipToken:    strings.TrimSpace(getEnv("LOGSHIP_TOKEN", "")),
		LogShipTimeout:  logShipTimeout,
		LogShipMinLevel: logShipMinLevel,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

// parseSeasonStart accepts either a date or a full RFC3339 timestamp. The
// season anchor pins matchday bucketing, so it must parse unambiguously.
func parseSeasonStart(v string) (time.Time, error) {
	value := strings.TrimSpace(v)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid SEASON_START %q: expected YYYY-MM-DD or RFC3339", v)
	}
	return t.UTC(), nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
