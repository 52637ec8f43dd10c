package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint       = "https://practicum.yandex.ru/api/user_api/homework_statuses/"
	DefaultRetryPeriod    = 600 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "debug"
	DefaultDatabaseName   = "homework_bot"

	minRetryPeriod = time.Second
)

type Config struct {
	PracticumToken string
	TelegramToken  string
	TelegramChatID int64

	Settings
}

// Settings holds the non-secret knobs. They can come from a YAML file and
// are then overridden by the environment.
type Settings struct {
	Endpoint       string   `yaml:"endpoint"`
	TelegramAPIURL string   `yaml:"telegram_api_url"`
	RetryPeriod    Duration `yaml:"retry_period"`
	RequestTimeout Duration `yaml:"request_timeout"`
	LogLevel       string   `yaml:"log_level"`
	LogFile        string   `yaml:"log_file"`
	MongoDBURI     string   `yaml:"mongodb_uri"`
	DatabaseName   string   `yaml:"database_name"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

var ErrMissingEnv = errors.New("missing required environment variables")

// Load reads the secrets from the environment (after loading envFile, if it
// exists) and the optional settings file. Nothing is fetched or sent here.
func Load(envFile, settingsFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	required := []string{
		"PRACTICUM_TOKEN",
		"TELEGRAM_TOKEN",
		"TELEGRAM_CHAT_ID",
	}

	var missing []string
	for _, key := range required {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	chatID, err := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID must be a numeric chat id: %w", err)
	}

	var settings *Settings
	if settingsFile != "" {
		data, err := os.ReadFile(settingsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
		settings, err = Parse(data)
		if err != nil {
			return nil, err
		}
	} else {
		settings, _ = Parse(nil)
	}

	if err := settings.applyEnv(); err != nil {
		return nil, err
	}

	return &Config{
		PracticumToken: os.Getenv("PRACTICUM_TOKEN"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: chatID,
		Settings:       *settings,
	}, nil
}

// Parse parses settings YAML and applies defaults. Empty input yields the
// defaults.
func Parse(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	s.applyDefaults()

	if err := s.validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *Settings) applyDefaults() {
	if s.Endpoint == "" {
		s.Endpoint = DefaultEndpoint
	}
	if s.RetryPeriod == 0 {
		s.RetryPeriod = Duration(DefaultRetryPeriod)
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = Duration(DefaultRequestTimeout)
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
	if s.DatabaseName == "" {
		s.DatabaseName = DefaultDatabaseName
	}
}

func (s *Settings) applyEnv() error {
	s.Endpoint = getEnv("PRACTICUM_ENDPOINT", s.Endpoint)
	s.TelegramAPIURL = getEnv("TELEGRAM_API_URL", s.TelegramAPIURL)
	s.LogLevel = getEnv("LOG_LEVEL", s.LogLevel)
	s.LogFile = getEnv("LOG_FILE", s.LogFile)
	s.MongoDBURI = getEnv("MONGODB_URI", s.MongoDBURI)
	s.DatabaseName = getEnv("DATABASE_NAME", s.DatabaseName)

	if v := os.Getenv("RETRY_PERIOD"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RETRY_PERIOD %q: %w", v, err)
		}
		s.RetryPeriod = Duration(d)
	}

	return s.validate()
}

func (s *Settings) validate() error {
	if s.RetryPeriod.Duration() < minRetryPeriod {
		return fmt.Errorf("retry_period must be at least %s, got %s", minRetryPeriod, s.RetryPeriod.Duration())
	}
	if s.RequestTimeout.Duration() < 0 {
		return fmt.Errorf("request_timeout cannot be negative, got %s", s.RequestTimeout.Duration())
	}
	if !strings.HasPrefix(s.Endpoint, "http://") && !strings.HasPrefix(s.Endpoint, "https://") {
		return fmt.Errorf("endpoint must have a scheme (http:// or https://), got %q", s.Endpoint)
	}
	// empty means the public Bot API
	if s.TelegramAPIURL != "" && !strings.HasPrefix(s.TelegramAPIURL, "http://") && !strings.HasPrefix(s.TelegramAPIURL, "https://") {
		return fmt.Errorf("telegram_api_url must have a scheme (http:// or https://), got %q", s.TelegramAPIURL)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
