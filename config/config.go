package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultNotebookID = "33b8d0b2-ee3f-43f3-ba62-e8095ba5f03b"
	DefaultCORSOrigin = "http://localhost:5173"
)

type Config struct {
	App struct {
		Name        string
		Port        string
		GinMode     string
		CORSOrigins []string
		LogLevel    string
	}
	NotebookLM struct {
		NotebookID  string
		StorageB64  string
		StoragePath string
		BaseURL     string
		Timeout     time.Duration
	}
	Ask struct {
		MaxQuestionLength int
	}
	Metrics struct {
		Enabled bool
	}
	Redis struct {
		Addr     string
		DB       int
		Password string
	}
	RateLimit struct {
		PerMinute int
	}
	RabbitMQ struct {
		Url   string
		Queue string
	}
}

// envKeys maps config keys onto the environment variable names the service has
// always read, so deployments keep working without a config file.
var envKeys = map[string]string{
	"app.port":               "PORT",
	"app.ginmode":            "GIN_MODE",
	"app.corsorigins":        "CORS_ORIGINS",
	"app.loglevel":           "LOG_LEVEL",
	"notebooklm.notebookid":  "NOTEBOOKLM_NOTEBOOK_ID",
	"notebooklm.storageb64":  "NOTEBOOKLM_STORAGE_B64",
	"notebooklm.storagepath": "NOTEBOOKLM_STORAGE_PATH",
	"notebooklm.baseurl":     "NOTEBOOKLM_BASE_URL",
	"notebooklm.timeout":     "NOTEBOOKLM_TIMEOUT",
	"ask.maxquestionlength":  "ASK_MAX_QUESTION_LENGTH",
	"metrics.enabled":        "METRICS_ENABLED",
	"redis.addr":             "REDIS_ADDR",
	"redis.db":               "REDIS_DB",
	"redis.password":         "REDIS_PASSWORD",
	"ratelimit.perminute":    "RATE_LIMIT_PER_MINUTE",
	"rabbitmq.url":           "RABBITMQ_URL",
	"rabbitmq.queue":         "RABBITMQ_QUEUE",
}

// Load reads .env (if any), an optional config/config.yml and the process
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath("./config")

	v.SetDefault("app.name", "ask-brooks-api")
	v.SetDefault("app.port", "8000")
	v.SetDefault("app.ginmode", "release")
	v.SetDefault("app.corsorigins", DefaultCORSOrigin)
	v.SetDefault("app.loglevel", "info")
	v.SetDefault("notebooklm.notebookid", DefaultNotebookID)
	v.SetDefault("notebooklm.storagepath", defaultStoragePath())
	v.SetDefault("notebooklm.baseurl", "http://localhost:8765")
	v.SetDefault("notebooklm.timeout", 120*time.Second)
	v.SetDefault("ask.maxquestionlength", 0)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("rabbitmq.queue", "ask.events")

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	cfg.App.Name = v.GetString("app.name")
	cfg.App.Port = v.GetString("app.port")
	cfg.App.GinMode = v.GetString("app.ginmode")
	cfg.App.CORSOrigins = splitOrigins(v.GetString("app.corsorigins"))
	cfg.App.LogLevel = v.GetString("app.loglevel")

	cfg.NotebookLM.NotebookID = v.GetString("notebooklm.notebookid")
	cfg.NotebookLM.StorageB64 = v.GetString("notebooklm.storageb64")
	cfg.NotebookLM.StoragePath = expandHome(v.GetString("notebooklm.storagepath"))
	cfg.NotebookLM.BaseURL = v.GetString("notebooklm.baseurl")
	cfg.NotebookLM.Timeout = v.GetDuration("notebooklm.timeout")

	cfg.Ask.MaxQuestionLength = v.GetInt("ask.maxquestionlength")
	cfg.Metrics.Enabled = v.GetBool("metrics.enabled")

	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.RateLimit.PerMinute = v.GetInt("ratelimit.perminute")

	cfg.RabbitMQ.Url = v.GetString("rabbitmq.url")
	cfg.RabbitMQ.Queue = v.GetString("rabbitmq.queue")

	return cfg, nil
}

// splitOrigins turns "a, b,,c" into [a b c].
func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func defaultStoragePath() string {
	return filepath.Join("~", ".notebooklm", "storage_state.json")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
