// Package telegramx wraps the gogram MTProto client behind the small surface the
// radar needs: proxied client construction, the interactive login flow, session
// string export, dialog listing, and a normalized new-message feed. Keeping the
// library types at this boundary lets the capture path run against a mock.
package telegramx

import (
	"fmt"
	"log/slog"

	"github.com/amarnathcjd/gogram/telegram"

	"github.com/AlbertLei-Web3/AlphaRadar/config"
)

// Client owns a connected gogram client.
type Client struct {
	tg *telegram.Client
}

// NewClient builds a Telegram client from config: API credentials, optional
// string session, and the SOCKS proxy. It does not connect.
func NewClient(cfg *config.Config) (*Client, error) {
	proxy, err := cfg.ProxyURL()
	if err != nil {
		return nil, err
	}
	if proxy != nil {
		slog.Debug("telegram client dialing through proxy", slog.String("proxy", proxy.String()))
	}
	tg, err := telegram.NewClient(telegram.ClientConfig{
		AppID:         cfg.APIID,
		AppHash:       cfg.APIHash,
		StringSession: cfg.SessionString,
		Proxy:         proxy,
		LogLevel:      telegram.LogWarn,
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram client: %w", err)
	}
	return &Client{tg: tg}, nil
}

// Connect performs the MTProto handshake (through the proxy when configured).
func (c *Client) Connect() error {
	if err := c.tg.Connect(); err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	return nil
}

// LoginPhone runs the code-based sign-in for the given phone number. The
// library prompts for the verification code (and 2FA password if enabled) on
// stdin, mirroring the interactive flow of the original generator script.
func (c *Client) LoginPhone(phone string) error {
	if _, err := c.tg.Login(phone); err != nil {
		return fmt.Errorf("sign in %s: %w", phone, err)
	}
	return nil
}

// ExportSession returns the opaque session string that allows reconnecting
// without repeating the interactive login.
func (c *Client) ExportSession() string {
	return c.tg.ExportSession()
}

// Me returns the authorized account, doubling as a connectivity probe.
func (c *Client) Me() (*telegram.UserObj, error) {
	me, err := c.tg.GetMe()
	if err != nil {
		return nil, fmt.Errorf("get self: %w", err)
	}
	return me, nil
}

// Ping checks that the session is still authorized and the connection alive.
func (c *Client) Ping() error {
	_, err := c.tg.GetMe()
	return err
}

// OnNewMessage registers fn for every incoming message, normalized to the
// radar's Message shape.
func (c *Client) OnNewMessage(fn func(Message) error) {
	c.tg.AddMessageHandler(telegram.OnNewMessage, func(m *telegram.NewMessage) error {
		return fn(fromNewMessage(m))
	})
}

// Idle blocks delivering updates until Stop is called.
func (c *Client) Idle() {
	c.tg.Idle()
}

// Stop disconnects the client. Safe to call once the updates loop should end.
func (c *Client) Stop() {
	c.tg.Stop()
}
