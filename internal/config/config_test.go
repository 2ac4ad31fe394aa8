package config

import (
	"testing"
	"time"
)

func TestFalCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  FalConfig
		want string
	}{
		{name: "single key", cfg: FalConfig{Key: "abc"}, want: "abc"},
		{name: "key wins over pair", cfg: FalConfig{Key: "abc", KeyID: "id", KeySecret: "secret"}, want: "abc"},
		{name: "pair", cfg: FalConfig{KeyID: "id", KeySecret: "secret"}, want: "id:secret"},
		{name: "half a pair", cfg: FalConfig{KeyID: "id"}, want: ""},
		{name: "nothing", cfg: FalConfig{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Credentials(); got != tt.want {
				t.Errorf("Credentials() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDraftsEnabledNeedsModel(t *testing.T) {
	cfg := &Config{Fal: FalConfig{Key: "abc"}}
	if cfg.DraftsEnabled() {
		t.Error("expected drafts disabled without a podcast model")
	}
	cfg.Fal.PodcastModel = "acme/podcast"
	if !cfg.DraftsEnabled() {
		t.Error("expected drafts enabled with key and model")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FAL_KEY_ID", "id")
	t.Setenv("FAL_KEY_SECRET", "secret")
	t.Setenv("FAL_PODCAST_MODEL", "acme/podcast")
	t.Setenv("COMPOSE_API_KEY", "token")
	t.Setenv("COMPOSE_TEMPLATE_ID", "tmpl-1")
	t.Setenv("PROVIDER_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.Fal.Credentials(); got != "id:secret" {
		t.Errorf("credentials = %q, want id:secret", got)
	}
	if !cfg.DraftsEnabled() {
		t.Error("expected drafts enabled")
	}
	if !cfg.ComposeEnabled() {
		t.Error("expected compose enabled")
	}
	if cfg.ProviderTimeout != 5*time.Second {
		t.Errorf("ProviderTimeout = %v, want 5s", cfg.ProviderTimeout)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want default 8080", cfg.Port)
	}
	if cfg.Speech.Voice != "Rachel" {
		t.Errorf("Speech.Voice = %q, want Rachel", cfg.Speech.Voice)
	}
}
