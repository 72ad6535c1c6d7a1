package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenMode(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}

	cfg.Token = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestEngineConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  EngineConfig
		ok   bool
	}{
		{"defaults", NewDefaultConfig().Engine, true},
		{"lc", EngineConfig{TR: 1, Mode: "lc", MaxParallel: 1}, true},
		{"zero TR", EngineConfig{TR: 0, Mode: "full", MaxParallel: 1}, false},
		{"negative TR", EngineConfig{TR: -0.5, Mode: "full", MaxParallel: 1}, false},
		{"bad mode", EngineConfig{TR: 0.5, Mode: "nlo", MaxParallel: 1}, false},
		{"no workers", EngineConfig{TR: 0.5, Mode: "full"}, false},
		{"too many workers", EngineConfig{TR: 0.5, Mode: "full", MaxParallel: 1000}, false},
	}
	for _, c := range cases {
		err := c.cfg.Validate()
		if (err == nil) != c.ok {
			t.Errorf("%s: err = %v, want ok=%v", c.name, err, c.ok)
		}
	}

	empty := EngineConfig{TR: 0.5, MaxParallel: 2}
	if err := empty.Validate(); err != nil {
		t.Fatalf("empty mode: %v", err)
	}
	if empty.Mode != "full" {
		t.Errorf("empty mode normalised to %q", empty.Mode)
	}
}

func TestFullConfig_Validate(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}

	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}

	cfg = NewDefaultConfig()
	cfg.Workspace.Path = ""
	err := cfg.Validate()
	if err == nil || !strings.HasPrefix(err.Error(), "workspace:") {
		t.Errorf("err = %v, want workspace error", err)
	}
}
