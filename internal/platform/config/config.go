package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	DBMaxConns    int32
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	JWTSecret string
	JWTIssuer string

	CORSAllowedOrigins []string
	RateLimit          string

	// Ledger transaction tuning.
	TxMaxRetries     int
	StatementTimeout time.Duration

	// Reconciliation auditor. A zero AuditInterval disables the scheduled run.
	AuditInterval            time.Duration
	AuditDuplicateWindowDays int

	// Ledger events. An empty AMQPURL disables publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_ISSUER", "contractor-backoffice")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("LEDGER_TX_MAX_RETRIES", 5)
	viper.SetDefault("LEDGER_STATEMENT_TIMEOUT", "5s")
	viper.SetDefault("AUDIT_INTERVAL", "0")
	viper.SetDefault("AUDIT_DUPLICATE_WINDOW_DAYS", 3)
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("AMQP_EXCHANGE", "ledger")
	viper.SetDefault("AMQP_QUEUE", "ledger.audit")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.DBMaxConns = viper.GetInt32("DB_MAX_CONNS")

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	cfg.TxMaxRetries = viper.GetInt("LEDGER_TX_MAX_RETRIES")
	if cfg.TxMaxRetries < 0 {
		log.Printf("Warning: LEDGER_TX_MAX_RETRIES is negative (%d). Defaulting to 0.\n", cfg.TxMaxRetries)
		cfg.TxMaxRetries = 0
	}
	cfg.StatementTimeout = parseDuration("LEDGER_STATEMENT_TIMEOUT", 5*time.Second)

	cfg.AuditInterval = parseDuration("AUDIT_INTERVAL", 0)
	cfg.AuditDuplicateWindowDays = viper.GetInt("AUDIT_DUPLICATE_WINDOW_DAYS")
	if cfg.AuditDuplicateWindowDays < 0 {
		log.Printf("Warning: AUDIT_DUPLICATE_WINDOW_DAYS is negative (%d). Defaulting to 3.\n", cfg.AuditDuplicateWindowDays)
		cfg.AuditDuplicateWindowDays = 3
	}

	cfg.AMQPURL = viper.GetString("AMQP_URL")
	cfg.AMQPExchange = viper.GetString("AMQP_EXCHANGE")
	cfg.AMQPQueue = viper.GetString("AMQP_QUEUE")

	return cfg, nil
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	if raw == "" || raw == "0" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
