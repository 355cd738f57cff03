package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	devCookieSecret = "dev-secret-change-in-production"

	DefaultModel     = "gemini-2.5-flash"
	DefaultMaxFrames = 20
	DefaultPacing    = 2 * time.Second
	DefaultAdminUser = "admin"
	DefaultAdminPass = "admin"

	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// ModelChoice is one selectable model with its display label.
type ModelChoice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var modelChoices = []ModelChoice{
	{ID: "gemini-2.5-flash", Label: "Gemini 2.5 Flash"},
	{ID: "gemini-2.5-pro", Label: "Gemini 2.5 Pro"},
	{ID: "gemini-2.0-flash", Label: "Gemini 2.0 Flash"},
}

// Load reads .env from the current directory and sets env vars.
// Safe to call multiple times; existing env vars are not overwritten.
func Load() error {
	return godotenv.Load()
}

// GeminiAPIKey returns the server-wide provider credential.
func GeminiAPIKey() string {
	return strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
}

// Model returns the default model id used when a run does not pick one.
func Model() string {
	if v := strings.TrimSpace(os.Getenv("CAUSALTRACE_MODEL")); v != "" {
		return v
	}
	return DefaultModel
}

// Models returns the selectable models. The configured default is always included.
func Models() []ModelChoice {
	out := make([]ModelChoice, len(modelChoices))
	copy(out, modelChoices)
	def := Model()
	for _, m := range out {
		if m.ID == def {
			return out
		}
	}
	return append([]ModelChoice{{ID: def, Label: def}}, out...)
}

// ModelLabel returns the display label for a model id, or the id itself.
func ModelLabel(id string) string {
	for _, m := range Models() {
		if m.ID == id {
			return m.Label
		}
	}
	return id
}

// DataDir returns the root directory for persisted documents.
func DataDir() string {
	if v := os.Getenv("CAUSALTRACE_DATA_DIR"); v != "" {
		return v
	}
	return "data"
}

// UploadsDir returns the directory that receives uploaded frame folders.
func UploadsDir() string {
	if v := os.Getenv("CAUSALTRACE_UPLOADS_DIR"); v != "" {
		return v
	}
	return filepath.Join(DataDir(), "uploads", "frames")
}

// StoreBackend returns "file" or "sqlite". Unknown values fall back to "file".
func StoreBackend() string {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("CAUSALTRACE_STORE")), StoreSQLite) {
		return StoreSQLite
	}
	return StoreFile
}

// SQLitePath returns the database file used by the sqlite backend.
func SQLitePath() string {
	if v := os.Getenv("CAUSALTRACE_SQLITE_PATH"); v != "" {
		return v
	}
	return filepath.Join(DataDir(), "causaltrace.db")
}

// MaxFrames returns the frame cap per run. Non-positive or invalid values use the default.
func MaxFrames() int {
	return positiveInt("CAUSALTRACE_MAX_FRAMES", DefaultMaxFrames)
}

// Pacing returns the delay between consecutive provider calls.
// "0s" disables pacing; negative or invalid values use the default.
func Pacing() time.Duration {
	return duration("CAUSALTRACE_PACING", DefaultPacing, true)
}

// CallTimeout returns the timeout applied to a single provider call.
func CallTimeout() time.Duration {
	return duration("CAUSALTRACE_CALL_TIMEOUT", 60*time.Second, false)
}

// SessionTTL returns how long a session cookie stays valid.
func SessionTTL() time.Duration {
	return duration("CAUSALTRACE_SESSION_TTL", 24*time.Hour, false)
}

// CookieSecret returns the secret for signing session cookies (CAUSALTRACE_COOKIE_SECRET).
// If unset, returns a dev default and callers should log a warning.
func CookieSecret() string {
	s := os.Getenv("CAUSALTRACE_COOKIE_SECRET")
	if s == "" {
		return devCookieSecret
	}
	return s
}

// SecureCookies returns true if cookies should use the Secure flag (e.g. behind HTTPS).
func SecureCookies() bool {
	return os.Getenv("CAUSALTRACE_SECURE_COOKIES") == "1" || os.Getenv("HTTPS") == "1"
}

// AdminCredentials returns the bootstrap account and whether the defaults were used.
func AdminCredentials() (username, password string, defaulted bool) {
	username = strings.TrimSpace(os.Getenv("CAUSALTRACE_ADMIN_USERNAME"))
	password = os.Getenv("CAUSALTRACE_ADMIN_PASSWORD")
	if username == "" {
		username = DefaultAdminUser
	}
	if password == "" {
		password = DefaultAdminPass
		defaulted = true
	}
	return username, password, defaulted
}

// LogLevel returns the configured log level name.
func LogLevel() string {
	return strings.ToLower(strings.TrimSpace(os.Getenv("CAUSALTRACE_LOG_LEVEL")))
}

// Addr returns the listen address derived from PORT.
func Addr() string {
	port := os.Getenv("PORT")
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func positiveInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func duration(key string, def time.Duration, allowZero bool) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return def
	}
	return d
}
