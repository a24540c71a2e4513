package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"

	NotifierLog   = "log"
	NotifierSMTP  = "smtp"
	NotifierKafka = "kafka"
)

type Config struct {
	AppPort string
	Store   string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	Notifier string
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// SMTPTimeoutSeconds bounds one relay session.
	SMTPTimeoutSeconds int

	KafkaBrokers []string
	KafkaTopic   string

	FrontendURL string

	RateLimitRPS   float64
	RateLimitBurst int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getfloat(k string, d float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads the environment. An optional .env in the working directory is
// applied first; variables already set win over it.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: ignoring .env: %v", err)
	}

	return &Config{
		AppPort: getenv("APP_PORT", "8080"),
		Store:   strings.ToLower(getenv("STORE", StoreMySQL)),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "creditos"),
		MySQLUser: getenv("MYSQL_USER", "creditos"),
		MySQLPass: getenv("MYSQL_PASS", "creditos"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		Notifier: strings.ToLower(getenv("NOTIFIER", NotifierLog)),
		SMTPHost: getenv("SMTP_HOST", "localhost"),
		SMTPPort: getint("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: getenv("SMTP_FROM", "creditos@universidad.edu.co"),

		SMTPTimeoutSeconds: getint("SMTP_TIMEOUT_SECONDS", 10),

		KafkaBrokers: splitList(getenv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "creditos.notifications"),

		FrontendURL: getenv("FRONTEND_URL", "http://localhost:3000"),

		RateLimitRPS:   getfloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getint("RATE_LIMIT_BURST", 20),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.Store {
	case StoreMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("invalid STORE %q (want mysql or memory)", c.Store)
	}
	switch c.Notifier {
	case NotifierLog:
	case NotifierSMTP:
		if c.SMTPHost == "" || c.SMTPFrom == "" {
			return errors.New("missing SMTP config (SMTP_HOST/FROM)")
		}
		if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
			return fmt.Errorf("invalid SMTP_PORT %d", c.SMTPPort)
		}
		if c.SMTPTimeoutSeconds <= 0 {
			return fmt.Errorf("invalid SMTP_TIMEOUT_SECONDS %d", c.SMTPTimeoutSeconds)
		}
	case NotifierKafka:
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			return errors.New("missing Kafka config (KAFKA_BROKERS/TOPIC)")
		}
	default:
		return fmt.Errorf("invalid NOTIFIER %q (want log, smtp or kafka)", c.Notifier)
	}
	if c.IdempTTLSecs <= 0 {
		return fmt.Errorf("invalid IDEMPOTENCY_TTL_SECONDS %d", c.IdempTTLSecs)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return errors.New("rate limit values must not be negative")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME; loc=UTC keeps timestamps comparable
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
