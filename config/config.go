package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TokensEnv overrides auth.tokens. Format: "token:user_id[:admin],...".
const TokensEnv = "AIRTICKETING_API_TOKENS"

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	SeatMap  SeatMapConfig  `yaml:"seatmap"`
	Ticket   TicketConfig   `yaml:"ticket"`
	Auth     AuthConfig     `yaml:"auth"`
	Email    EmailConfig    `yaml:"email"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`

	MaxConns    int32 `yaml:"max_conns"`
	ApplySchema bool  `yaml:"apply_schema"`
	// Isolation is one of "read committed", "repeatable read", "serializable".
	Isolation        string `yaml:"isolation"`
	TxAttempts       int    `yaml:"tx_attempts"`
	TxTimeoutSeconds int    `yaml:"tx_timeout_seconds"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func (d DatabaseConfig) TxTimeout() time.Duration {
	return time.Duration(d.TxTimeoutSeconds) * time.Second
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	FlightsTTLSeconds int `yaml:"flights_ttl_seconds"`
	SeatsTTLSeconds   int `yaml:"seats_ttl_seconds"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	EventsTopic        string   `yaml:"events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type SeatMapConfig struct {
	FirstClassRows int `yaml:"first_class_rows"`
}

type TicketConfig struct {
	CodeAttempts int `yaml:"code_attempts"`
}

type AuthConfig struct {
	Tokens []TokenConfig `yaml:"tokens"`
}

type TokenConfig struct {
	Token  string `yaml:"token"`
	UserID int64  `yaml:"user_id"`
	Admin  bool   `yaml:"admin"`
}

type EmailConfig struct {
	From string `yaml:"from"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel falls back to info for unknown values.
func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if raw, ok := os.LookupEnv(TokensEnv); ok {
		tokens, err := ParseTokens(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", TokensEnv, err)
		}
		cfg.Auth.Tokens = tokens
	}
	if pw, ok := os.LookupEnv("AIRTICKETING_DB_PASSWORD"); ok {
		cfg.Database.Password = pw
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the values used for keys absent from the file.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{Address: ":8080"},
		GRPC: GRPCConfig{Address: ":9090"},
		Database: DatabaseConfig{
			Host:             "localhost",
			Port:             5432,
			SSLMode:          "disable",
			MaxConns:         20,
			Isolation:        "read committed",
			TxAttempts:       3,
			TxTimeoutSeconds: 5,
		},
		Redis: RedisConfig{
			Addr:              "localhost:6379",
			FlightsTTLSeconds: 30,
			SeatsTTLSeconds:   600,
		},
		Kafka: KafkaConfig{
			EventsTopic:        "reservation-events",
			NotificationsTopic: "ticket-notifications",
			GroupID:            "airticketing-worker",
		},
		SeatMap: SeatMapConfig{FirstClassRows: 2},
		Ticket:  TicketConfig{CodeAttempts: 5},
		Email:   EmailConfig{From: "tickets@airticketing.local"},
		Log:     LogConfig{Level: "info"},
	}
}

func (c *Config) Validate() error {
	if c.Database.TxAttempts < 1 {
		return fmt.Errorf("database.tx_attempts must be at least 1")
	}
	if c.SeatMap.FirstClassRows < 0 {
		return fmt.Errorf("seatmap.first_class_rows must not be negative")
	}
	if c.Ticket.CodeAttempts < 1 {
		return fmt.Errorf("ticket.code_attempts must be at least 1")
	}
	seen := make(map[string]struct{}, len(c.Auth.Tokens))
	for _, t := range c.Auth.Tokens {
		if t.Token == "" {
			return fmt.Errorf("auth.tokens: empty token")
		}
		if _, dup := seen[t.Token]; dup {
			return fmt.Errorf("auth.tokens: duplicate token")
		}
		seen[t.Token] = struct{}{}
	}
	return nil
}

// ParseTokens parses the TokensEnv format.
func ParseTokens(raw string) ([]TokenConfig, error) {
	var tokens []TokenConfig
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
			return nil, fmt.Errorf("malformed token entry %q", entry)
		}
		userID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("token entry %q: bad user id: %w", entry, err)
		}
		t := TokenConfig{Token: parts[0], UserID: userID}
		if len(parts) == 3 {
			if parts[2] != "admin" {
				return nil, fmt.Errorf("token entry %q: unknown flag %q", entry, parts[2])
			}
			t.Admin = true
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}
