// Package config loads environment variables and provides a typed Config used across the service.
// It applies the same fallback defaults the original capture scripts shipped with, so the binary
// can run locally with minimal setup. For required credentials (Telegram API id/hash and a
// session string), use ValidateListenReady.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Defaults baked into the original session generator. Register your own
// application at https://my.telegram.org and override via env for anything
// beyond local debugging.
const (
	DefaultAPIID   = 27321288
	DefaultAPIHash = "5c3202e68b0b9d356e7fc7daaec65e90"

	// GMGN Featured Signals(Lv2) - SOL
	DefaultGroupID = -1002202241417
)

// DefaultThreadIDs are the two topics the radar originally watched inside the
// default group: Pump King of the hill (KOTH) and KOL FOMO.
var DefaultThreadIDs = []int64{3216629, 3216593}

// KnownGroups maps human-readable names to marked chat ids, for the
// dialogs/tail helper tools.
var KnownGroups = map[string]int64{
	"gmgn-featured-sol": DefaultGroupID,
}

// KnownThreads maps human-readable topic names to thread ids within the
// default group.
var KnownThreads = map[string]int64{
	"pump-koth": 3216629,
	"kol-fomo":  3216593,
}

type Config struct {
	// Telegram
	APIID         int32
	APIHash       string
	SessionString string
	Phone         string

	// Capture targets
	GroupID   int64
	ThreadIDs []int64

	// SOCKS proxy the client dials through
	ProxyEnabled  bool
	ProxyHost     string
	ProxyPort     int
	ProxyProtocol string

	// HTTP
	HTTPAddr string
}

// Load reads environment variables and applies defaults. It doesn't fail when Telegram
// credentials are missing; use ValidateListenReady when you require the capture path.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.APIID = DefaultAPIID
	if v := os.Getenv("TELEGRAM_API_ID"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_API_ID %q: %w", v, err)
		}
		cfg.APIID = int32(n)
	}
	cfg.APIHash = os.Getenv("TELEGRAM_API_HASH")
	if cfg.APIHash == "" {
		cfg.APIHash = DefaultAPIHash
	}
	cfg.SessionString = os.Getenv("TELEGRAM_SESSION_STRING")
	cfg.Phone = os.Getenv("TELEGRAM_PHONE")

	cfg.GroupID = DefaultGroupID
	if v := os.Getenv("TELEGRAM_GROUP_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_GROUP_ID %q: %w", v, err)
		}
		cfg.GroupID = id
	}

	if v := os.Getenv("TELEGRAM_THREAD_IDS"); v != "" {
		ids, err := ParseThreadIDs(v)
		if err != nil {
			return nil, err
		}
		cfg.ThreadIDs = ids
	} else {
		cfg.ThreadIDs = append([]int64(nil), DefaultThreadIDs...)
	}

	// Proxy is on by default to match the original scripts, which always
	// dialed through a local SOCKS5 forwarder. Set PROXY_ENABLED=0 for a
	// direct connection.
	cfg.ProxyEnabled = os.Getenv("PROXY_ENABLED") != "0"
	cfg.ProxyHost = os.Getenv("PROXY_HOST")
	if cfg.ProxyHost == "" {
		cfg.ProxyHost = "127.0.0.1"
	}
	cfg.ProxyPort = 10808
	if v := os.Getenv("PROXY_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return nil, fmt.Errorf("invalid PROXY_PORT %q", v)
		}
		cfg.ProxyPort = p
	}
	cfg.ProxyProtocol = os.Getenv("PROXY_PROTOCOL")
	if cfg.ProxyProtocol == "" {
		cfg.ProxyProtocol = "socks5"
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	return cfg, nil
}

// ApplyOverrides folds admin-stored config overrides into the loaded config.
// lookup resolves one key (the daemon passes the kv cfg:* reader); overrides
// win over the environment, matching /admin/config reads. On a malformed
// stored value nothing is applied and the env-derived config stands.
func (c *Config) ApplyOverrides(lookup func(key string) (string, bool)) error {
	groupID := c.GroupID
	threadIDs := c.ThreadIDs
	if v, ok := lookup("TELEGRAM_GROUP_ID"); ok && v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_GROUP_ID override %q: %w", v, err)
		}
		groupID = id
	}
	if v, ok := lookup("TELEGRAM_THREAD_IDS"); ok && v != "" {
		ids, err := ParseThreadIDs(v)
		if err != nil {
			return fmt.Errorf("TELEGRAM_THREAD_IDS override: %w", err)
		}
		threadIDs = ids
	}
	c.GroupID = groupID
	c.ThreadIDs = threadIDs
	return nil
}

// ParseThreadIDs parses a comma-separated list of thread/topic ids. Blank
// items are skipped; a non-integer item is an error naming the offending
// value rather than a crash.
func ParseThreadIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid thread id %q: must be an integer", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ProxyURL builds the proxy URL the Telegram client dials through, or nil when
// the proxy is disabled.
func (c *Config) ProxyURL() (*url.URL, error) {
	if !c.ProxyEnabled {
		return nil, nil
	}
	raw := fmt.Sprintf("%s://%s:%d", c.ProxyProtocol, c.ProxyHost, c.ProxyPort)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy url %q: %w", raw, err)
	}
	return u, nil
}

// WatchesThread reports whether the capture path should keep a message in the
// given thread. An empty watch list means all threads in the group.
func (c *Config) WatchesThread(id int64) bool {
	if len(c.ThreadIDs) == 0 {
		return true
	}
	for _, t := range c.ThreadIDs {
		if t == id {
			return true
		}
	}
	return false
}

// ValidateListenReady checks required fields for the capture path (daemon or tail).
func (c *Config) ValidateListenReady() error {
	if c.APIID == 0 || c.APIHash == "" {
		return fmt.Errorf("missing telegram api credentials: require TELEGRAM_API_ID, TELEGRAM_API_HASH")
	}
	if c.SessionString == "" {
		return fmt.Errorf("missing TELEGRAM_SESSION_STRING: run sessiongen first")
	}
	return nil
}
