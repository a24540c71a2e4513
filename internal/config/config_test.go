package config

import (
	"os"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here
	for _, k := range []string{"APP_PORT", "STORE", "NOTIFIER", "KAFKA_BROKERS", "RATE_LIMIT_RPS", "IDEMPOTENCY_TTL_SECONDS"} {
		t.Setenv(k, "")
	}

	c := Load()
	if c.AppPort != "8080" || c.Store != StoreMySQL || c.Notifier != NotifierLog {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.IdempTTLSecs != 300 || c.RateLimitRPS != 10 || c.RateLimitBurst != 20 {
		t.Fatalf("unexpected numeric defaults: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE", "Memory")
	t.Setenv("NOTIFIER", "kafka")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "not-a-number")

	c := Load()
	if c.Store != StoreMemory || c.Notifier != NotifierKafka || c.RedisDB != 3 || c.RateLimitRPS != 2.5 {
		t.Fatalf("env not applied: %+v", c)
	}
	if len(c.KafkaBrokers) != 2 || c.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers = %q", c.KafkaBrokers)
	}
	if c.IdempTTLSecs != 300 {
		t.Fatalf("unparsable int should keep default, got %d", c.IdempTTLSecs)
	}
}

func TestLoad_DotEnvDoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir+"/.env", "APP_PORT=9999\nSMTP_FROM=dotenv@uni.edu\n")
	t.Setenv("APP_PORT", "7070")
	t.Setenv("SMTP_FROM", "")
	os.Unsetenv("SMTP_FROM") // godotenv only fills unset keys

	c := Load()
	if c.AppPort != "7070" {
		t.Fatalf("environment must win over .env, got %s", c.AppPort)
	}
	if c.SMTPFrom != "dotenv@uni.edu" {
		t.Fatalf(".env value not applied, got %s", c.SMTPFrom)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			AppPort: "8080", Store: StoreMySQL, Notifier: NotifierLog,
			MySQLHost: "db", MySQLPort: "3306", MySQLDB: "creditos", MySQLUser: "u",
			SMTPHost: "smtp", SMTPPort: 587, SMTPFrom: "a@b.co", SMTPTimeoutSeconds: 10,
			KafkaBrokers: []string{"k:9092"}, KafkaTopic: "t",
			IdempTTLSecs: 60,
		}
	}
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"ok", func(*Config) {}, ""},
		{"memory skips mysql", func(c *Config) { c.Store = StoreMemory; c.MySQLHost = "" }, ""},
		{"bad store", func(c *Config) { c.Store = "mongo" }, "invalid STORE"},
		{"missing mysql", func(c *Config) { c.MySQLDB = "" }, "missing MySQL"},
		{"bad mysql port", func(c *Config) { c.MySQLPort = "abc" }, "invalid MYSQL_PORT"},
		{"bad notifier", func(c *Config) { c.Notifier = "sms" }, "invalid NOTIFIER"},
		{"smtp port", func(c *Config) { c.Notifier = NotifierSMTP; c.SMTPPort = 70000 }, "invalid SMTP_PORT"},
		{"smtp ok", func(c *Config) { c.Notifier = NotifierSMTP }, ""},
		{"smtp timeout", func(c *Config) { c.Notifier = NotifierSMTP; c.SMTPTimeoutSeconds = 0 }, "invalid SMTP_TIMEOUT_SECONDS"},
		{"kafka brokers", func(c *Config) { c.Notifier = NotifierKafka; c.KafkaBrokers = nil }, "missing Kafka"},
		{"ttl", func(c *Config) { c.IdempTTLSecs = 0 }, "IDEMPOTENCY_TTL_SECONDS"},
		{"rate", func(c *Config) { c.RateLimitRPS = -1 }, "rate limit"},
		{"port", func(c *Config) { c.AppPort = "" }, "APP_PORT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(c)
			err := c.Validate()
			if tc.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLUser: "u", MySQLPass: "p", MySQLHost: "db", MySQLPort: "3306", MySQLDB: "creditos"}
	want := "u:p@tcp(db:3306)/creditos?parseTime=true&loc=UTC&charset=utf8mb4"
	if got := c.MySQLDSN(); got != want {
		t.Fatalf("dsn = %q, want %q", got, want)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
