package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Pattern: PYCHECK_[SECTION]_[KEY]
// (e.g., PYCHECK_OBSERVABILITY_ADDR).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Paths.ProjectRoot, "PYCHECK_PATHS_PROJECT_ROOT")
	setEnvString(&cfg.Paths.StateDir, "PYCHECK_PATHS_STATE_DIR")
	setEnvString(&cfg.Paths.CacheDir, "PYCHECK_PATHS_CACHE_DIR")

	setEnvString(&cfg.PackageRoot, "PYCHECK_PACKAGE_ROOT")

	setEnvInt(&cfg.Parser.Workers, "PYCHECK_PARSER_WORKERS")
	setEnvInt(&cfg.Parser.CacheCapacity, "PYCHECK_PARSER_CACHE_CAPACITY")
	setEnvUint64(&cfg.Parser.MemoryLimitMB, "PYCHECK_PARSER_MEMORY_LIMIT_MB")
	setEnvFloat64(&cfg.Parser.RatePerSecond, "PYCHECK_PARSER_RATE_PER_SECOND")

	setEnvDuration(&cfg.Watch.Debounce, "PYCHECK_WATCH_DEBOUNCE")

	setEnvBool(&cfg.History.Enabled, "PYCHECK_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "PYCHECK_HISTORY_PATH")
	setEnvDuration(&cfg.History.BusyTimeout, "PYCHECK_HISTORY_BUSY_TIMEOUT")

	setEnvString(&cfg.Output.Format, "PYCHECK_OUTPUT_FORMAT")
	setEnvString(&cfg.Output.File, "PYCHECK_OUTPUT_FILE")

	setEnvBool(&cfg.Observability.Enabled, "PYCHECK_OBSERVABILITY_ENABLED")
	setEnvString(&cfg.Observability.Addr, "PYCHECK_OBSERVABILITY_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "PYCHECK_OBSERVABILITY_OTLP_ENDPOINT")
}

// overrideEnv sets *target from key when the variable is present and parse
// accepts its value. Unparseable values are logged and ignored rather than
// clobbering the configured value.
func overrideEnv[T any](target *T, key string, parse func(string) (T, error)) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	parsed, err := parse(val)
	if err != nil {
		slog.Warn("ignoring unparseable env override", "key", key, "value", val, "error", err)
		return
	}
	slog.Debug("applying env override", "key", key, "value", val)
	*target = parsed
}

func setEnvString(target *string, key string) {
	overrideEnv(target, key, func(s string) (string, error) { return s, nil })
}

func setEnvInt(target *int, key string) {
	overrideEnv(target, key, strconv.Atoi)
}

func setEnvUint64(target *uint64, key string) {
	overrideEnv(target, key, func(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) })
}

func setEnvBool(target *bool, key string) {
	overrideEnv(target, key, func(s string) (bool, error) { return strconv.ParseBool(strings.ToLower(s)) })
}

func setEnvFloat64(target *float64, key string) {
	overrideEnv(target, key, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func setEnvDuration(target *time.Duration, key string) {
	overrideEnv(target, key, time.ParseDuration)
}
