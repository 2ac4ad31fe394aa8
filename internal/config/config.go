package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is built once at startup and handed to whatever needs provider access.
type Config struct {
	Port            string
	FrontendURL     string
	ProviderTimeout time.Duration

	Fal       FalConfig
	OpenAI    OpenAIConfig
	Narration NarrationConfig
	Speech    SpeechConfig
	Video     VideoConfig
	Compose   ComposeConfig
	Runs      RunsConfig
}

type FalConfig struct {
	Key          string
	KeyID        string
	KeySecret    string
	QueueURL     string
	PodcastModel string
	PollInterval time.Duration
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type NarrationConfig struct {
	// Model is the fal endpoint used when no OpenAI key is configured.
	Model         string
	LLM           string
	TargetSeconds int
}

type SpeechConfig struct {
	Model     string
	Voice     string
	Stability float64
	Speed     float64
}

type VideoConfig struct {
	Model             string
	PresenterImageURL string
	Resolution        string
	StreamLogs        bool
}

type ComposeConfig struct {
	APIURL     string
	APIKey     string
	TemplateID string
}

type RunsConfig struct {
	DatabaseURL   string
	RedisURL      string
	CacheTTL      time.Duration
	Retention     time.Duration
	PruneSchedule string
}

// Credentials resolves the fal credential: FAL_KEY wins, then the
// FAL_KEY_ID/FAL_KEY_SECRET pair. Empty means not configured.
func (f FalConfig) Credentials() string {
	if f.Key != "" {
		return f.Key
	}
	if f.KeyID != "" && f.KeySecret != "" {
		return f.KeyID + ":" + f.KeySecret
	}
	return ""
}

// DraftsEnabled reports whether live draft generation is possible.
func (c *Config) DraftsEnabled() bool {
	return c.Fal.Credentials() != "" && c.Fal.PodcastModel != ""
}

// ComposeEnabled reports whether the optional composition stage should run.
func (c *Config) ComposeEnabled() bool {
	return c.Compose.APIKey != "" && c.Compose.TemplateID != ""
}

var envBindings = map[string]string{
	"port":                     "PORT",
	"frontend_url":             "FRONTEND_URL",
	"provider_timeout":         "PROVIDER_TIMEOUT",
	"fal.key":                  "FAL_KEY",
	"fal.key_id":               "FAL_KEY_ID",
	"fal.key_secret":           "FAL_KEY_SECRET",
	"fal.queue_url":            "FAL_QUEUE_URL",
	"fal.podcast_model":        "FAL_PODCAST_MODEL",
	"fal.poll_interval":        "FAL_POLL_INTERVAL",
	"openai.api_key":           "OPENAI_API_KEY",
	"openai.base_url":          "OPENAI_BASE_URL",
	"openai.model":             "OPENAI_MODEL",
	"narration.model":          "NARRATION_MODEL",
	"narration.llm":            "NARRATION_LLM",
	"narration.target_seconds": "NARRATION_TARGET_SECONDS",
	"speech.model":             "SPEECH_MODEL",
	"speech.voice":             "SPEECH_VOICE",
	"speech.stability":         "SPEECH_STABILITY",
	"speech.speed":             "SPEECH_SPEED",
	"video.model":              "VIDEO_MODEL",
	"video.presenter_image":    "PRESENTER_IMAGE_URL",
	"video.resolution":         "VIDEO_RESOLUTION",
	"video.stream_logs":        "VIDEO_STREAM_LOGS",
	"compose.api_url":          "COMPOSE_API_URL",
	"compose.api_key":          "COMPOSE_API_KEY",
	"compose.template_id":      "COMPOSE_TEMPLATE_ID",
	"runs.database_url":        "DATABASE_URL",
	"runs.redis_url":           "REDIS_URL",
	"runs.cache_ttl":           "RUN_CACHE_TTL",
	"runs.retention":           "RUN_RETENTION",
	"runs.prune_schedule":      "RUN_PRUNE_SCHEDULE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("provider_timeout", 60*time.Second)
	v.SetDefault("fal.queue_url", "https://queue.fal.run")
	v.SetDefault("fal.poll_interval", time.Second)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("narration.model", "fal-ai/any-llm")
	v.SetDefault("narration.llm", "google/gemini-flash-1.5")
	v.SetDefault("narration.target_seconds", 30)
	v.SetDefault("speech.model", "fal-ai/elevenlabs/tts/turbo-v2.5")
	v.SetDefault("speech.voice", "Rachel")
	v.SetDefault("speech.stability", 0.5)
	v.SetDefault("speech.speed", 1.0)
	v.SetDefault("video.model", "veed/fabric-1.0")
	v.SetDefault("video.presenter_image", "https://v3.fal.media/files/presenter/vibecast-host.png")
	v.SetDefault("video.resolution", "480p")
	v.SetDefault("video.stream_logs", true)
	v.SetDefault("compose.api_url", "https://api.creatomate.com/v1/renders")
	v.SetDefault("runs.cache_ttl", 24*time.Hour)
	v.SetDefault("runs.retention", 30*24*time.Hour)
	v.SetDefault("runs.prune_schedule", "@daily")
}

// Load reads .env, an optional config.yaml in the working directory, and the
// environment. Environment variables override the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	setDefaults(v)
	for key, env := range envBindings {
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

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:            v.GetString("port"),
		FrontendURL:     v.GetString("frontend_url"),
		ProviderTimeout: v.GetDuration("provider_timeout"),
		Fal: FalConfig{
			Key:          strings.TrimSpace(v.GetString("fal.key")),
			KeyID:        strings.TrimSpace(v.GetString("fal.key_id")),
			KeySecret:    strings.TrimSpace(v.GetString("fal.key_secret")),
			QueueURL:     strings.TrimRight(v.GetString("fal.queue_url"), "/"),
			PodcastModel: strings.TrimSpace(v.GetString("fal.podcast_model")),
			PollInterval: v.GetDuration("fal.poll_interval"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  strings.TrimSpace(v.GetString("openai.api_key")),
			BaseURL: v.GetString("openai.base_url"),
			Model:   v.GetString("openai.model"),
		},
		Narration: NarrationConfig{
			Model:         v.GetString("narration.model"),
			LLM:           v.GetString("narration.llm"),
			TargetSeconds: v.GetInt("narration.target_seconds"),
		},
		Speech: SpeechConfig{
			Model:     v.GetString("speech.model"),
			Voice:     v.GetString("speech.voice"),
			Stability: v.GetFloat64("speech.stability"),
			Speed:     v.GetFloat64("speech.speed"),
		},
		Video: VideoConfig{
			Model:             v.GetString("video.model"),
			PresenterImageURL: v.GetString("video.presenter_image"),
			Resolution:        v.GetString("video.resolution"),
			StreamLogs:        v.GetBool("video.stream_logs"),
		},
		Compose: ComposeConfig{
			APIURL:     v.GetString("compose.api_url"),
			APIKey:     strings.TrimSpace(v.GetString("compose.api_key")),
			TemplateID: strings.TrimSpace(v.GetString("compose.template_id")),
		},
		Runs: RunsConfig{
			DatabaseURL:   v.GetString("runs.database_url"),
			RedisURL:      v.GetString("runs.redis_url"),
			CacheTTL:      v.GetDuration("runs.cache_ttl"),
			Retention:     v.GetDuration("runs.retention"),
			PruneSchedule: v.GetString("runs.prune_schedule"),
		},
	}
}
