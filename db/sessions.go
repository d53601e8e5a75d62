package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/AlbertLei-Web3/AlphaRadar/crypto"
)

// DefaultSessionName is the sessions-table key used when only one account is
// configured.
const DefaultSessionName = "telegram"

var (
	encryptor     crypto.Encryptor
	encryptorOnce sync.Once
	encryptorErr  error
)

// initEncryptor initializes the session-string encryptor from
// SESSION_ENCRYPTION_KEY. If the key is not set, encryption is disabled and
// sessions are stored with encryption_version=0.
func initEncryptor() {
	encryptorOnce.Do(func() {
		key := os.Getenv("SESSION_ENCRYPTION_KEY")
		if key == "" {
			slog.Warn("SESSION_ENCRYPTION_KEY not set, session strings will be stored in plaintext (not recommended for production)", slog.String("component", "db_encryption"))
			return
		}
		enc, err := crypto.NewAESEncryptor(key)
		if err != nil {
			encryptorErr = fmt.Errorf("failed to initialize encryption: %w", err)
			slog.Error("session encryption initialization failed", slog.Any("error", encryptorErr), slog.String("component", "db_encryption"))
			return
		}
		encryptor = enc
		slog.Info("session string encryption enabled (AES-256-GCM)", slog.String("component", "db_encryption"))
	})
}

func getEncryptor() (crypto.Encryptor, error) {
	initEncryptor()
	if encryptorErr != nil {
		return nil, encryptorErr
	}
	return encryptor, nil
}

// UpsertSession stores or updates a session string under the given name,
// encrypting it when SESSION_ENCRYPTION_KEY is configured.
func UpsertSession(ctx context.Context, dbx *sql.DB, name, sessionString string) error {
	enc, err := getEncryptor()
	if err != nil {
		return fmt.Errorf("get encryptor: %w", err)
	}
	stored := sessionString
	version := 0
	if enc != nil {
		stored, err = crypto.EncryptString(enc, sessionString)
		if err != nil {
			return fmt.Errorf("encrypt session: %w", err)
		}
		version = 1
	}
	_, err = dbx.ExecContext(ctx, `INSERT INTO sessions (name, session_string, encryption_version, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (name) DO UPDATE SET session_string=EXCLUDED.session_string, encryption_version=EXCLUDED.encryption_version, updated_at=NOW()`,
		name, stored, version)
	if err != nil {
		return fmt.Errorf("upsert session %q: %w", name, err)
	}
	return nil
}

// GetSession loads a stored session string, decrypting when the row is marked
// encrypted. Missing rows return ("", false, nil).
func GetSession(ctx context.Context, dbx *sql.DB, name string) (string, bool, error) {
	var stored string
	var version int
	err := dbx.QueryRowContext(ctx, `SELECT session_string, encryption_version FROM sessions WHERE name=$1`, name).Scan(&stored, &version)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load session %q: %w", name, err)
	}
	if version == 0 {
		return stored, true, nil
	}
	enc, err := getEncryptor()
	if err != nil {
		return "", false, fmt.Errorf("get encryptor: %w", err)
	}
	if enc == nil {
		return "", false, fmt.Errorf("session %q is encrypted but SESSION_ENCRYPTION_KEY is not set", name)
	}
	plain, err := crypto.DecryptString(enc, stored)
	if err != nil {
		return "", false, fmt.Errorf("decrypt session %q: %w", name, err)
	}
	return plain, true, nil
}

// SessionUpdatedAt returns when the named session row was last written, for
// the status surface. Missing rows return the zero time.
func SessionUpdatedAt(ctx context.Context, dbx *sql.DB, name string) time.Time {
	var t sql.NullTime
	if err := dbx.QueryRowContext(ctx, `SELECT updated_at FROM sessions WHERE name=$1`, name).Scan(&t); err != nil {
		return time.Time{}
	}
	if t.Valid {
		return t.Time
	}
	return time.Time{}
}

// ResetEncryptorForTest clears the cached encryptor so tests can exercise both
// the plaintext and encrypted paths.
func ResetEncryptorForTest() {
	encryptor = nil
	encryptorErr = nil
	encryptorOnce = sync.Once{}
}
