package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"TELEGRAM_API_ID", "TELEGRAM_API_HASH", "TELEGRAM_SESSION_STRING",
		"TELEGRAM_GROUP_ID", "TELEGRAM_THREAD_IDS",
		"PROXY_ENABLED", "PROXY_HOST", "PROXY_PORT", "PROXY_PROTOCOL",
	} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIID != DefaultAPIID {
		t.Errorf("APIID = %d, want default %d", cfg.APIID, DefaultAPIID)
	}
	if cfg.APIHash != DefaultAPIHash {
		t.Errorf("APIHash = %q, want baked-in default", cfg.APIHash)
	}
	if cfg.GroupID != DefaultGroupID {
		t.Errorf("GroupID = %d, want %d", cfg.GroupID, DefaultGroupID)
	}
	if len(cfg.ThreadIDs) != 2 || cfg.ThreadIDs[0] != 3216629 || cfg.ThreadIDs[1] != 3216593 {
		t.Errorf("ThreadIDs = %v, want default pair", cfg.ThreadIDs)
	}
	if cfg.ProxyHost != "127.0.0.1" || cfg.ProxyPort != 10808 || cfg.ProxyProtocol != "socks5" {
		t.Errorf("unexpected proxy defaults: %s://%s:%d", cfg.ProxyProtocol, cfg.ProxyHost, cfg.ProxyPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_API_ID", "12345")
	t.Setenv("TELEGRAM_GROUP_ID", "-1001234567890")
	t.Setenv("TELEGRAM_THREAD_IDS", "10, 20,30")
	t.Setenv("PROXY_PORT", "1080")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIID != 12345 {
		t.Errorf("APIID = %d, want 12345", cfg.APIID)
	}
	if cfg.GroupID != -1001234567890 {
		t.Errorf("GroupID = %d, want -1001234567890", cfg.GroupID)
	}
	if len(cfg.ThreadIDs) != 3 || cfg.ThreadIDs[2] != 30 {
		t.Errorf("ThreadIDs = %v, want [10 20 30]", cfg.ThreadIDs)
	}
	if cfg.ProxyPort != 1080 {
		t.Errorf("ProxyPort = %d, want 1080", cfg.ProxyPort)
	}
}

func TestLoadRejectsMalformedIDs(t *testing.T) {
	t.Setenv("TELEGRAM_GROUP_ID", "not-a-number")
	if _, err := Load(); err == nil {
		t.Error("expected error for malformed TELEGRAM_GROUP_ID")
	}
	t.Setenv("TELEGRAM_GROUP_ID", "")
	t.Setenv("TELEGRAM_THREAD_IDS", "111,abc")
	if _, err := Load(); err == nil {
		t.Error("expected error for malformed TELEGRAM_THREAD_IDS")
	}
}

func TestParseThreadIDs(t *testing.T) {
	tests := []struct {
		in      string
		want    []int64
		wantErr bool
	}{
		{"3216629,3216593", []int64{3216629, 3216593}, false},
		{" 1 , 2 ,", []int64{1, 2}, false},
		{"", nil, false},
		{"x", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseThreadIDs(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseThreadIDs(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ParseThreadIDs(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseThreadIDs(%q)[%d] = %d, want %d", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestProxyURL(t *testing.T) {
	t.Setenv("PROXY_HOST", "10.0.0.1")
	t.Setenv("PROXY_PORT", "1080")
	t.Setenv("PROXY_PROTOCOL", "socks5")
	cfg, _ := Load()
	u, err := cfg.ProxyURL()
	if err != nil {
		t.Fatalf("ProxyURL() error: %v", err)
	}
	if u.String() != "socks5://10.0.0.1:1080" {
		t.Errorf("ProxyURL() = %q, want socks5://10.0.0.1:1080", u)
	}

	t.Setenv("PROXY_ENABLED", "0")
	cfg, _ = Load()
	u, err = cfg.ProxyURL()
	if err != nil || u != nil {
		t.Errorf("disabled proxy: got (%v, %v), want (nil, nil)", u, err)
	}
}

func TestWatchesThread(t *testing.T) {
	cfg := &Config{ThreadIDs: []int64{1, 2}}
	if !cfg.WatchesThread(1) || cfg.WatchesThread(3) {
		t.Error("WatchesThread filter mismatch")
	}
	cfg.ThreadIDs = nil
	if !cfg.WatchesThread(99) {
		t.Error("empty watch list should match all threads")
	}
}

func TestApplyOverrides(t *testing.T) {
	stored := map[string]string{
		"TELEGRAM_GROUP_ID":   "-1001111111111",
		"TELEGRAM_THREAD_IDS": "10,20",
	}
	lookup := func(k string) (string, bool) {
		v, ok := stored[k]
		return v, ok
	}

	cfg := &Config{GroupID: DefaultGroupID, ThreadIDs: []int64{3216629}}
	if err := cfg.ApplyOverrides(lookup); err != nil {
		t.Fatalf("ApplyOverrides() error: %v", err)
	}
	if cfg.GroupID != -1001111111111 {
		t.Errorf("GroupID = %d, want stored override", cfg.GroupID)
	}
	if len(cfg.ThreadIDs) != 2 || cfg.ThreadIDs[0] != 10 || cfg.ThreadIDs[1] != 20 {
		t.Errorf("ThreadIDs = %v, want [10 20]", cfg.ThreadIDs)
	}
}

func TestApplyOverridesNoRows(t *testing.T) {
	cfg := &Config{GroupID: DefaultGroupID, ThreadIDs: []int64{3216629}}
	if err := cfg.ApplyOverrides(func(string) (string, bool) { return "", false }); err != nil {
		t.Fatalf("ApplyOverrides() error: %v", err)
	}
	if cfg.GroupID != DefaultGroupID || len(cfg.ThreadIDs) != 1 {
		t.Errorf("config changed with no overrides present: %+v", cfg)
	}
}

func TestApplyOverridesRejectsMalformed(t *testing.T) {
	cfg := &Config{GroupID: DefaultGroupID, ThreadIDs: []int64{3216629}}
	err := cfg.ApplyOverrides(func(k string) (string, bool) {
		if k == "TELEGRAM_THREAD_IDS" {
			return "10,abc", true
		}
		return "", false
	})
	if err == nil {
		t.Fatal("expected error for malformed stored thread list")
	}
	if len(cfg.ThreadIDs) != 1 || cfg.ThreadIDs[0] != 3216629 {
		t.Errorf("malformed override must leave the watch list untouched, got %v", cfg.ThreadIDs)
	}
}

func TestValidateListenReady(t *testing.T) {
	t.Setenv("TELEGRAM_SESSION_STRING", "AQAAbbbccc")
	cfg, _ := Load()
	if err := cfg.ValidateListenReady(); err != nil {
		t.Errorf("expected valid listen config, got %v", err)
	}
	if err := os.Unsetenv("TELEGRAM_SESSION_STRING"); err != nil {
		t.Fatalf("failed to unset TELEGRAM_SESSION_STRING: %v", err)
	}
	cfg, _ = Load()
	if err := cfg.ValidateListenReady(); err == nil {
		t.Error("expected error when session string missing")
	}
}
