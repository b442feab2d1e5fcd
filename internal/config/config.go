// Package config loads the intake service configuration from defaults, an
// optional intake.yaml file, a .env file and INTAKE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment   string              `mapstructure:"environment"`
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Storage       StorageConfig       `mapstructure:"storage"`
	FAQ           FAQConfig           `mapstructure:"faq"`
	Transcription TranscriptionConfig `mapstructure:"transcription"`
	Sentiment     SentimentConfig     `mapstructure:"sentiment"`
	Reply         ReplyConfig         `mapstructure:"reply"`
	Mail          MailConfig          `mapstructure:"mail"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
}

type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

type StorageConfig struct {
	Backend    string `mapstructure:"backend"` // "json" or "sqlite"
	DataDir    string `mapstructure:"data_dir"`
	UploadsDir string `mapstructure:"uploads_dir"`
}

type FAQConfig struct {
	// SeedXLSX, when set and the FAQ file does not exist yet, seeds the FAQ
	// from the first sheet of this workbook instead of the built-in entries.
	SeedXLSX string `mapstructure:"seed_xlsx"`
}

// TranscriptionConfig points at a whisper-compatible transcription endpoint.
type TranscriptionConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Model    string        `mapstructure:"model"`
	Language string        `mapstructure:"language"`
	Mock     bool          `mapstructure:"mock"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Retries  uint64        `mapstructure:"retries"`
}

// SentimentConfig points at a text-classification inference endpoint.
type SentimentConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Token    string        `mapstructure:"token"`
	Mock     bool          `mapstructure:"mock"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Retries  uint64        `mapstructure:"retries"`
}

type ReplyConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Mock        bool    `mapstructure:"mock"`
}

type MailConfig struct {
	Host       string   `mapstructure:"host"`
	Port       int      `mapstructure:"port"`
	Sender     string   `mapstructure:"sender"`
	Password   string   `mapstructure:"password"`
	Recipients []string `mapstructure:"recipients"`
	QueueSize  int      `mapstructure:"queue_size"`
}

// Load reads the configuration. If configFile is empty the search order is
// ./intake.yaml, ./configs/intake.yaml, /etc/intake/intake.yaml; a missing
// file is not an error.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load() // loads .env

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("intake")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/intake")
	}

	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "local")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("log.level", "info")
	v.SetDefault("storage.backend", "json")
	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("storage.uploads_dir", "uploads")
	v.SetDefault("faq.seed_xlsx", "")
	v.SetDefault("transcription.endpoint", "http://localhost:9000/v1/audio/transcriptions")
	v.SetDefault("transcription.model", "openai/whisper-small.en")
	v.SetDefault("transcription.language", "en")
	v.SetDefault("transcription.mock", false)
	v.SetDefault("transcription.timeout", 60*time.Second)
	v.SetDefault("transcription.retries", 0)
	v.SetDefault("sentiment.endpoint", "https://api-inference.huggingface.co/models/nlptown/bert-base-multilingual-uncased-sentiment")
	v.SetDefault("sentiment.token", "")
	v.SetDefault("sentiment.mock", false)
	v.SetDefault("sentiment.timeout", 20*time.Second)
	v.SetDefault("sentiment.retries", 0)
	v.SetDefault("reply.api_key", "")
	v.SetDefault("reply.model", "gemini-1.5-flash")
	v.SetDefault("reply.temperature", 0.7)
	v.SetDefault("reply.max_tokens", 500)
	v.SetDefault("reply.mock", false)
	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 465)
	v.SetDefault("mail.sender", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.recipients", []string{})
	v.SetDefault("mail.queue_size", 64)
}

// bindLegacyEnv keeps the un-prefixed variable names deployments already use.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("environment", "INTAKE_ENVIRONMENT", "ENVIRONMENT")
	_ = v.BindEnv("log.level", "INTAKE_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("server.addr", "INTAKE_SERVER_ADDR", "ADDR")
	_ = v.BindEnv("mail.sender", "INTAKE_MAIL_SENDER", "EMAIL_SENDER")
	_ = v.BindEnv("mail.password", "INTAKE_MAIL_PASSWORD", "EMAIL_PASSWORD")
	_ = v.BindEnv("mail.recipients", "INTAKE_MAIL_RECIPIENTS", "EMAIL_RECIPIENTS")
	_ = v.BindEnv("reply.api_key", "INTAKE_REPLY_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("sentiment.token", "INTAKE_SENTIMENT_TOKEN", "HF_API_TOKEN")
}

// Validate reports configuration values the service cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("invalid storage.backend %q: want json or sqlite", c.Storage.Backend)
	}
	if c.Storage.DataDir == "" {
		return errors.New("storage.data_dir must not be empty")
	}
	if c.Mail.Port <= 0 {
		return fmt.Errorf("invalid mail.port %d", c.Mail.Port)
	}
	if c.Mail.QueueSize <= 0 {
		return fmt.Errorf("invalid mail.queue_size %d", c.Mail.QueueSize)
	}
	if !c.Transcription.Mock && c.Transcription.Endpoint == "" {
		return errors.New("transcription.endpoint is required unless transcription.mock is set")
	}
	if !c.Sentiment.Mock && c.Sentiment.Endpoint == "" {
		return errors.New("sentiment.endpoint is required unless sentiment.mock is set")
	}
	return nil
}
