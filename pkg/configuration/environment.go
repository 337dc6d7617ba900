package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oneacrefund/fieldops-console/pkg/logging"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// envSearchDir returns the directory env files are resolved against: the
// working directory, or the nearest ancestor containing go.mod so tests run
// from package directories still pick up the repo-root env files.
func envSearchDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	dir := wd
	for {
		if fileExists(filepath.Join(dir, ".env")) || fileExists(filepath.Join(dir, ".env.local")) {
			return dir
		}
		if fileExists(filepath.Join(dir, "go.mod")) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return wd
		}
		dir = parent
	}
}

func LoadEnv(envFiles []string) (int, error) {
	root := envSearchDir()
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		resolved := file
		if !filepath.IsAbs(file) {
			resolved = filepath.Join(root, file)
		}
		if fileExists(resolved) {
			existingFiles = append(existingFiles, resolved)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

// UpstreamOptions describes the program REST API the console consumes.
type UpstreamOptions struct {
	BaseURL        string        `env:"UPSTREAM_BASE_URL" envDefault:"http://localhost:8000/api"`
	RequestTimeout time.Duration `env:"UPSTREAM_REQUEST_TIMEOUT" envDefault:"20s"`
}

func (u *UpstreamOptions) Validate() error {
	if u.BaseURL == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL must not be empty")
	}
	if u.RequestTimeout < time.Second || u.RequestTimeout > 30*time.Second {
		return fmt.Errorf("UPSTREAM_REQUEST_TIMEOUT must be between 1s and 30s, got %s", u.RequestTimeout)
	}
	return nil
}

// AuthOptions describes the identity token exchange. The identity provider
// issues an assertion; the exchange endpoint validates it and returns the
// bearer token attached to every upstream call.
type AuthOptions struct {
	TokenExchangeURL string        `env:"AUTH_TOKEN_EXCHANGE_URL" envDefault:"http://localhost:8000/api/auth/token"`
	ClientID         string        `env:"AUTH_CLIENT_ID"`
	ClientSecret     string        `env:"AUTH_CLIENT_SECRET"`
	RefreshLeeway    time.Duration `env:"AUTH_REFRESH_LEEWAY" envDefault:"60s"`
}

type LogOptions struct {
	Path    string `env:"LOG_PATH" envDefault:"./logs/app.log"`
	AppName string `env:"LOG_APP_NAME" envDefault:"fieldops-console"`
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"fieldops-console"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type RateLimitOptions struct {
	Enabled   bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	GlobalRPS int    `env:"RATE_LIMIT_GLOBAL_RPS" envDefault:"1000"`
	Storage   string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory or redis
	RedisURL  string `env:"RATE_LIMIT_REDIS_URL"`
}

// Validate checks the rate limit configuration for errors
func (r *RateLimitOptions) Validate() error {
	if r.GlobalRPS < 0 {
		return fmt.Errorf("rate limit GlobalRPS must be non-negative, got %d", r.GlobalRPS)
	}
	if r.GlobalRPS > 1000000 {
		return fmt.Errorf("rate limit GlobalRPS too high, maximum is 1,000,000, got %d", r.GlobalRPS)
	}
	if r.Storage != "memory" && r.Storage != "redis" {
		return fmt.Errorf("rate limit Storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	if r.Storage == "redis" && r.RedisURL == "" {
		return fmt.Errorf("rate limit RedisURL is required when Storage is 'redis'")
	}
	return nil
}

type Configuration struct {
	Upstream      UpstreamOptions
	Auth          AuthOptions
	Log           LogOptions
	OpenTelemetry OpenTelemetryOptions
	Prometheus    PrometheusOptions
	RateLimit     RateLimitOptions

	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	Domain           string `env:"DOMAIN" envDefault:"localhost"`
	Origin           string `env:"ORIGIN" envDefault:"http://localhost:3200"`
	AllowedOrigins   string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`
	PageSize         int    `env:"PAGE_SIZE" envDefault:"10"`
	MaxPageSize      int    `env:"MAX_PAGE_SIZE" envDefault:"50"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	// The console looks for this header in the request, if it's not present, it will generate a random uuidv4
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	// The console looks for this header in the request, if it's not present, it will use request.RemoteAddr
	RealIPHeader string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`
	// Session ID cookie key
	SidCookieKey string `env:"SID_COOKIE_KEY" envDefault:"sid"`

	SupportedLanguages []string `env:"SUPPORTED_LANGUAGES" envDefault:"en,fr,sw" envSeparator:","`

	// Ops endpoints guard (/health, /debug/prometheus). Enforced only in production.
	OpsGuardEnabled       bool   `env:"OPS_GUARD_ENABLED" envDefault:"true"`
	OpsGuardCIDRs         string `env:"OPS_GUARD_CIDRS" envDefault:""`
	OpsGuardToken         string `env:"OPS_GUARD_TOKEN" envDefault:""`
	OpsGuardBasicAuthUser string `env:"OPS_GUARD_BASIC_AUTH_USER" envDefault:""`
	OpsGuardBasicAuthPass string `env:"OPS_GUARD_BASIC_AUTH_PASS" envDefault:""`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func (c *Configuration) Scheme() string {
	if c.GoAppEnvironment == Production { // assume 'https' on production mode
		return "https"
	}
	return "http"
}

func (c *Configuration) CorsOrigins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}
	if err := c.Upstream.Validate(); err != nil {
		return fmt.Errorf("upstream configuration error: %w", err)
	}
	if c.PageSize <= 0 || c.PageSize > c.MaxPageSize {
		return fmt.Errorf("PAGE_SIZE must be in (0, %d], got %d", c.MaxPageSize, c.PageSize)
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.Log.Path)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}

	// Update Domain and Origin dynamically if they weren't explicitly set via
	// environment variables so logs show the correct port when PORT is set.
	if os.Getenv("DOMAIN") == "" {
		c.Domain = "localhost"
	}
	if os.Getenv("ORIGIN") == "" {
		if c.GoAppEnvironment == "development" {
			c.Origin = fmt.Sprintf("%s://%s:%d", c.Scheme(), c.Domain, c.ServerPort)
		} else {
			c.Origin = fmt.Sprintf("%s://%s", c.Scheme(), c.Domain)
		}
	}

	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
