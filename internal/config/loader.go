package config

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// LookupFunc reads one variable. It has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads configuration from the process environment, applies defaults
// and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load over an arbitrary variable source. Every malformed or
// missing required variable is reported, not only the first one.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	l := &loader{lookup: lookup}
	l.fill(reflect.ValueOf(cfg).Elem())
	if len(l.errs) > 0 {
		return nil, fmt.Errorf("config load: %s", strings.Join(l.errs, "; "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// MustLoad loads configuration and panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

type loader struct {
	lookup LookupFunc
	errs   []string
}

// get returns the first non-empty value among names.
func (l *loader) get(names ...string) string {
	for _, name := range names {
		if name == "" {
			continue
		}
		if v, ok := l.lookup(name); ok && v != "" {
			return v
		}
	}
	return ""
}

// fill walks the struct and sets every field that carries an env tag.
// Nested section structs are walked recursively.
func (l *loader) fill(v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			l.fill(fv)
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}

		value := l.get(name, field.Tag.Get("envAlt"))
		if value == "" {
			if field.Tag.Get("required") == "true" {
				l.errs = append(l.errs, fmt.Sprintf("%s is required", name))
				continue
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(fv, value); err != nil {
			l.errs = append(l.errs, fmt.Sprintf("%s=%q: %v", name, value, err))
		}
	}
}

var durationType = reflect.TypeOf(time.Duration(0))

// setField parses value into field according to the field's type.
func setField(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration")
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer")
		}
		field.SetInt(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean")
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		var items []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		field.Set(reflect.ValueOf(items))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// Validate checks every section and reports all failures at once.
func (c *Config) Validate() error {
	var errs []string
	errs = append(errs, c.Server.problems()...)
	errs = append(errs, c.Database.problems()...)
	errs = append(errs, c.Session.problems()...)
	errs = append(errs, c.AutoSave.problems()...)
	errs = append(errs, c.Table.problems()...)
	errs = append(errs, c.Rate.problems()...)
	errs = append(errs, c.Security.problems()...)
	errs = append(errs, c.Logging.problems()...)

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (c *ServerConfig) problems() []string {
	var errs []string
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Port))
	}
	if c.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	// Zero disables the request timeout middleware.
	if c.RequestTimeout < 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be non-negative")
	}
	return errs
}

// problems checks pool limits only when a database is configured.
func (c *DatabaseConfig) problems() []string {
	if !c.Enabled() {
		return nil
	}
	var errs []string
	if c.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}
	if c.MaxConns < c.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.MaxConns, c.MinConns))
	}
	return errs
}

func (c *SessionConfig) problems() []string {
	return positive(map[string]int64{
		"SESSION_TTL":            int64(c.TTL),
		"SESSION_MAX":            int64(c.MaxSessions),
		"SESSION_SWEEP_INTERVAL": int64(c.SweepInterval),
	})
}

func (c *AutoSaveConfig) problems() []string {
	return positive(map[string]int64{
		"AUTOSAVE_DELAY":        int64(c.Delay),
		"AUTOSAVE_SAVE_TIMEOUT": int64(c.SaveTimeout),
		"AUTOSAVE_RETENTION":    int64(c.Retention),
	})
}

func (c *TableConfig) problems() []string {
	var errs []string
	if _, err := language.Parse(c.CollationLocale); err != nil {
		errs = append(errs, fmt.Sprintf("TABLE_COLLATION_LOCALE (%q) is not a valid language tag", c.CollationLocale))
	}
	errs = append(errs, positive(map[string]int64{
		"TABLE_LOAD_TIMEOUT":         int64(c.LoadTimeout),
		"TABLE_MAX_CONCURRENT_LOADS": int64(c.MaxConcurrentLoads),
		"TABLE_LOAD_WAIT":            int64(c.LoadWait),
	})...)
	return errs
}

func (c *RateLimitConfig) problems() []string {
	if c.Enabled && c.RequestsPerMinute <= 0 {
		return []string{"RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled"}
	}
	return nil
}

func (c *SecurityConfig) problems() []string {
	if c.RequireAPIKey && len(c.APIKeys) == 0 {
		return []string{"REQUIRE_API_KEY is true but API_KEYS is empty"}
	}
	return nil
}

func (c *LoggingConfig) problems() []string {
	var errs []string
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Level))
	}
	switch strings.ToLower(c.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Format))
	}
	return errs
}

// positive reports every named value that is not greater than zero, in
// name order.
func positive(values map[string]int64) []string {
	var errs []string
	for _, name := range sortedKeys(values) {
		if values[name] <= 0 {
			errs = append(errs, name+" must be positive")
		}
	}
	return errs
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Locale returns the parsed collation locale, or language.Und when the
// tag does not parse.
func (c *TableConfig) Locale() language.Tag {
	tag, err := language.Parse(c.CollationLocale)
	if err != nil {
		return language.Und
	}
	return tag
}

// String renders the config for logs with the database URL and API keys
// masked.
func (c *Config) String() string {
	dbURL := "[NONE]"
	if c.Database.Enabled() {
		dbURL = "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d, RequestTimeout: %s}, ", c.Server.Host, c.Server.Port, c.Server.RequestTimeout)
	fmt.Fprintf(&b, "Database: {URL: %s, MaxConns: %d, MinConns: %d}, ", dbURL, c.Database.MaxConns, c.Database.MinConns)
	fmt.Fprintf(&b, "Session: {TTL: %s, Max: %d}, ", c.Session.TTL, c.Session.MaxSessions)
	fmt.Fprintf(&b, "AutoSave: {Delay: %s, Retention: %s}, ", c.AutoSave.Delay, c.AutoSave.Retention)
	fmt.Fprintf(&b, "Table: {Locale: %q, CacheTTL: %s, MaxLoads: %d}, ", c.Table.CollationLocale, c.Table.CacheTTL, c.Table.MaxConcurrentLoads)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ", c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Security: {RequireAPIKey: %v, APIKeys: %d}, ", c.Security.RequireAPIKey, len(c.Security.APIKeys))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
