// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/polyglot.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/polyglot.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.AIModel != "anthropic/claude-3.5-sonnet" {
		t.Errorf("AIModel = %q, want %q", cfg.AIModel, "anthropic/claude-3.5-sonnet")
	}
	if cfg.APITimeout != 90*time.Second {
		t.Errorf("APITimeout = %s, want %s", cfg.APITimeout, 90*time.Second)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want %d", cfg.Workers, 3)
	}
	if cfg.TranslationEnabled() {
		t.Error("TranslationEnabled() = true without an API key")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "POLYGLOT_DB_PATH", "/custom/path.db")
	setEnv(t, "POLYGLOT_SERVER_HOST", "0.0.0.0")
	setEnv(t, "POLYGLOT_SERVER_PORT", "3000")
	setEnv(t, "POLYGLOT_ENV", "production")
	setEnv(t, "POLYGLOT_OPENROUTER_API_KEY", "sk-or-test")
	setEnv(t, "POLYGLOT_AI_MODEL", "openai/gpt-4o-mini")
	setEnv(t, "POLYGLOT_WORKERS", "5")
	setEnv(t, "POLYGLOT_API_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "/custom/path.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/custom/path.db")
	}
	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true for production env")
	}
	if !cfg.TranslationEnabled() {
		t.Error("TranslationEnabled() = false with an API key")
	}
	if cfg.AIModel != "openai/gpt-4o-mini" {
		t.Errorf("AIModel = %q, want %q", cfg.AIModel, "openai/gpt-4o-mini")
	}
	if cfg.Workers != 5 {
		t.Errorf("Workers = %d, want %d", cfg.Workers, 5)
	}
	if cfg.APITimeout != 30*time.Second {
		t.Errorf("APITimeout = %s, want %s", cfg.APITimeout, 30*time.Second)
	}
}

func TestLoad_InvalidWorkers(t *testing.T) {
	os.Clearenv()
	setEnv(t, "POLYGLOT_WORKERS", "0")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted zero workers")
	}
}

func TestLoad_InvalidTimeout(t *testing.T) {
	os.Clearenv()
	setEnv(t, "POLYGLOT_API_TIMEOUT", "-5s")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted a negative timeout")
	}
}
