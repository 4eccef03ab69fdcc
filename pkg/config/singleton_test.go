package config

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"
)

func TestSetConfig_GetConfig(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	cfg := Default()
	cfg.Server.Port = 1234
	SetConfig(cfg)

	if got := GetConfig(); got != cfg {
		t.Errorf("GetConfig() = %p, want %p", got, cfg)
	}
	if got := MustGetConfig(); got.Server.Port != 1234 {
		t.Errorf("MustGetConfig().Server.Port = %d", got.Server.Port)
	}
}

func TestMustGetConfig_Panics(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)
	SetConfig(nil)

	defer func() {
		if recover() == nil {
			t.Error("MustGetConfig() did not panic")
		}
	}()
	MustGetConfig()
}

func TestInitialize(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	first := writeConfig(t, "server:\n  port: 7100\n")
	if err := Initialize(first); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if MustGetConfig().Server.Port != 7100 || ConfigPath() != first {
		t.Fatalf("after Initialize: port = %d path = %q", MustGetConfig().Server.Port, ConfigPath())
	}

	second := writeConfig(t, "server:\n  port: 7200\n")
	if err := Initialize(second); err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}
	if MustGetConfig().Server.Port != 7200 || ConfigPath() != second {
		t.Errorf("second Initialize did not replace: port = %d path = %q", MustGetConfig().Server.Port, ConfigPath())
	}

	bad := writeConfig(t, "engine:\n  backend: nope\n")
	if err := Initialize(bad); err == nil {
		t.Fatal("Initialize(invalid) error = nil")
	}
	if MustGetConfig().Server.Port != 7200 || ConfigPath() != second {
		t.Error("failed Initialize replaced the configuration")
	}

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize(\"\") error = %v", err)
	}
	if MustGetConfig().Server.Port != DefaultPort || ConfigPath() != "" {
		t.Errorf("defaults: port = %d path = %q", MustGetConfig().Server.Port, ConfigPath())
	}
}

func TestReloadConfig(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	path := writeConfig(t, "server:\n  port: 7000\n")
	cfg, err := ReloadConfig(path)
	if err != nil {
		t.Fatalf("ReloadConfig() error = %v", err)
	}
	if cfg.Server.Port != 7000 || GetConfig().Server.Port != 7000 {
		t.Errorf("port after reload = %d", GetConfig().Server.Port)
	}
	if ConfigPath() != path {
		t.Errorf("ConfigPath() = %q, want %q", ConfigPath(), path)
	}

	bad := writeConfig(t, "engine:\n  backend: nope\n")
	if _, err := ReloadConfig(bad); err == nil {
		t.Fatal("ReloadConfig(invalid) error = nil")
	}
	if GetConfig().Server.Port != 7000 {
		t.Error("failed reload replaced the configuration")
	}
}

func TestGetConfig_Concurrent(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)
	SetConfig(Default())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				SetConfig(Default())
				return
			}
			if GetConfig() == nil {
				t.Error("GetConfig() = nil")
			}
		}(i)
	}
	wg.Wait()
}

func TestWatcher_Reload(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	path := writeConfig(t, "engine:\n  backend: placeholder\n")

	changes := make(chan *Config, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, func(cfg *Config) { changes <- cfg }, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher a moment to start consuming events.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte("engine:\n  backend: placeholder\n  timeout: 3s\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	select {
	case cfg := <-changes:
		if cfg.Engine.Timeout != 3*time.Second {
			t.Errorf("reloaded Engine.Timeout = %v, want 3s", cfg.Engine.Timeout)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_InvalidReloadKeepsConfig(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	path := writeConfig(t, "server:\n  port: 7100\n")
	if _, err := ReloadConfig(path); err != nil {
		t.Fatalf("ReloadConfig() error = %v", err)
	}

	called := make(chan struct{}, 1)
	w, err := NewWatcher(path, 20*time.Millisecond, func(*Config) { called <- struct{}{} }, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("server:\n  port: 99999\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	select {
	case <-called:
		t.Fatal("onChange called for invalid configuration")
	case <-time.After(300 * time.Millisecond):
	}
	if GetConfig().Server.Port != 7100 {
		t.Errorf("Server.Port = %d, want 7100", GetConfig().Server.Port)
	}
}

func TestNewWatcher_Errors(t *testing.T) {
	if _, err := NewWatcher("", 0, nil, nil); err == nil {
		t.Error("NewWatcher(\"\") error = nil")
	}
	if _, err := NewWatcher("/nonexistent-dir-phi3/config.yaml", 0, nil, nil); err == nil {
		t.Error("NewWatcher(missing dir) error = nil")
	}
}
