package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"techhub/logger"

	"github.com/caarlos0/env/v11"
)

// Environment selects environment-conditional behaviour (seed admin, dev token
// endpoint, plaintext password fixtures). Every such branch keys off this value.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTest        Environment = "test"
	EnvProduction  Environment = "production"
)

// ParseEnvironment converts a string to an Environment.
func ParseEnvironment(s string) (Environment, error) {
	switch e := Environment(strings.ToLower(strings.TrimSpace(s))); e {
	case EnvDevelopment, EnvTest, EnvProduction:
		return e, nil
	case "dev":
		return EnvDevelopment, nil
	case "prod":
		return EnvProduction, nil
	default:
		return "", fmt.Errorf("unknown environment %q (want development, test or production)", s)
	}
}

// Config holds all configuration settings for the application.
type Config struct {
	// Server settings
	ListenAddress string   `env:"TECHHUB_LISTEN_ADDRESS" envDefault:"0.0.0.0"`
	ListenPort    string   `env:"TECHHUB_LISTEN_PORT" envDefault:"5000"`
	CorsOrigins   []string `env:"TECHHUB_CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	LogLevel      string   `env:"TECHHUB_LOG_LEVEL" envDefault:"info"`

	// Environment is parsed from EnvName after loading.
	EnvName     string      `env:"TECHHUB_ENV" envDefault:"development"`
	Environment Environment `env:"-"`

	// Database settings
	DbFilePath   string `env:"TECHHUB_DB_FILE_PATH" envDefault:"./data/database.json"`
	EnableBackup bool   `env:"TECHHUB_ENABLE_BACKUP" envDefault:"true"`

	// Authentication settings
	JwtSecret               string        `env:"TECHHUB_JWT_SECRET"`
	JwtSecretFile           string        `env:"TECHHUB_JWT_SECRET_FILE"`
	TokenLifetime           time.Duration `env:"TECHHUB_TOKEN_LIFETIME" envDefault:"168h"`
	BcryptCost              int           `env:"TECHHUB_BCRYPT_COST" envDefault:"10"`
	AllowPlaintextPasswords bool          `env:"TECHHUB_ALLOW_PLAINTEXT_PASSWORDS" envDefault:"false"`
	LoginRatePerMinute      float64       `env:"TECHHUB_LOGIN_RATE_PER_MINUTE" envDefault:"20"`
	LoginBurst              int           `env:"TECHHUB_LOGIN_BURST" envDefault:"5"`

	// First-run admin, only used outside production when the users collection is empty.
	SeedAdminName     string `env:"TECHHUB_SEED_ADMIN_NAME" envDefault:"Local Admin"`
	SeedAdminEmail    string `env:"TECHHUB_SEED_ADMIN_EMAIL" envDefault:"admin@local.test"`
	SeedAdminPassword string `env:"TECHHUB_SEED_ADMIN_PASSWORD" envDefault:"admin1234"`

	// SwaggerFile is served at /docs/swagger.json.
	SwaggerFile string `env:"TECHHUB_SWAGGER_FILE" envDefault:"./docs/swagger.json"`
}

// IsProduction reports whether the deployment is marked production.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// PlaintextPasswordsAllowed is the double opt-in for hand-authored plaintext
// password fixtures: never in production, and only when explicitly enabled.
func (c *Config) PlaintextPasswordsAllowed() bool {
	return !c.IsProduction() && c.AllowPlaintextPasswords
}

// ServerAddr returns the listen address in host:port form.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%s", c.ListenAddress, c.ListenPort)
}

// LoadConfig loads configuration from defaults, environment variables and the given
// command-line arguments. Flags take precedence over environment variables, which
// take precedence over defaults.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	// Flags default to the env-derived values, so an explicit flag always wins.
	fs := flag.NewFlagSet("techhub", flag.ContinueOnError)
	fs.StringVar(&cfg.ListenAddress, "address", cfg.ListenAddress, "Server listen address (Env: TECHHUB_LISTEN_ADDRESS)")
	fs.StringVar(&cfg.ListenPort, "port", cfg.ListenPort, "Server listen port (Env: TECHHUB_LISTEN_PORT)")
	fs.StringVar(&cfg.DbFilePath, "db-file", cfg.DbFilePath, "Path to the JSON database file (Env: TECHHUB_DB_FILE_PATH)")
	fs.BoolVar(&cfg.EnableBackup, "enable-backup", cfg.EnableBackup, "Keep a .bak copy of the database file on every write (Env: TECHHUB_ENABLE_BACKUP)")
	fs.StringVar(&cfg.EnvName, "env", cfg.EnvName, "Deployment environment: development, test or production (Env: TECHHUB_ENV)")
	fs.StringVar(&cfg.JwtSecretFile, "jwt-secret-file", cfg.JwtSecretFile, "Path to file containing the JWT secret (overrides TECHHUB_JWT_SECRET) (Env: TECHHUB_JWT_SECRET_FILE)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error (Env: TECHHUB_LOG_LEVEL)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	environment, err := ParseEnvironment(cfg.EnvName)
	if err != nil {
		return nil, err
	}
	cfg.Environment = environment

	if cfg.AllowPlaintextPasswords && cfg.IsProduction() {
		return nil, fmt.Errorf("TECHHUB_ALLOW_PLAINTEXT_PASSWORDS cannot be enabled in production")
	}

	if cfg.TokenLifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", cfg.TokenLifetime)
	}

	// --- JWT Secret Handling ---
	// Priority: File (flag/env) > Env Var. A missing secret is not fatal here; token
	// operations report it as a configuration error per request.
	secretSource := "Environment Variable (TECHHUB_JWT_SECRET)"
	if cfg.JwtSecretFile != "" {
		secretBytes, err := os.ReadFile(cfg.JwtSecretFile)
		switch {
		case err != nil:
			logger.Log.Warnf("Failed to read JWT secret file '%s': %v. Falling back to TECHHUB_JWT_SECRET.", cfg.JwtSecretFile, err)
		case strings.TrimSpace(string(secretBytes)) == "":
			logger.Log.Warnf("JWT secret file '%s' is empty or contains only whitespace. Ignoring.", cfg.JwtSecretFile)
		default:
			cfg.JwtSecret = strings.TrimSpace(string(secretBytes))
			secretSource = fmt.Sprintf("File (%s)", cfg.JwtSecretFile)
		}
	}
	cfg.JwtSecret = strings.TrimSpace(cfg.JwtSecret)
	if cfg.JwtSecret == "" {
		secretSource = "Not configured"
		logger.Log.Warn("JWT secret is not configured. Login and protected routes will fail with a configuration error.")
	}

	// --- Database Path Validation ---
	absDbPath, err := filepath.Abs(cfg.DbFilePath)
	if err != nil {
		return nil, fmt.Errorf("could not determine absolute path for db-file '%s': %w", cfg.DbFilePath, err)
	}
	cfg.DbFilePath = absDbPath

	fileInfo, err := os.Stat(cfg.DbFilePath)
	if err == nil && fileInfo.IsDir() {
		return nil, fmt.Errorf("database path '%s' points to a directory, not a file", cfg.DbFilePath)
	}

	logConfiguration(cfg, secretSource)

	return cfg, nil
}

// logConfiguration prints the loaded configuration settings. The secret itself is never logged.
func logConfiguration(cfg *Config, secretSource string) {
	logger.Log.WithFields(map[string]any{
		"address":           cfg.ListenAddress,
		"port":              cfg.ListenPort,
		"environment":       cfg.Environment,
		"db_file":           cfg.DbFilePath,
		"backup":            cfg.EnableBackup,
		"jwt_secret_source": secretSource,
		"token_lifetime":    cfg.TokenLifetime.String(),
		"bcrypt_cost":       cfg.BcryptCost,
		"plaintext_pw":      cfg.PlaintextPasswordsAllowed(),
		"cors_origins":      strings.Join(cfg.CorsOrigins, ","),
	}).Info("Configuration loaded")
}
