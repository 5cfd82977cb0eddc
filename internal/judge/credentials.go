package judge

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/imh0ng/open-machina/internal/observability"
)

// AuthRecordType enumerates the credential shapes accepted from the live
// accessor and the persisted auth store.
type AuthRecordType string

const (
	AuthTypeAPI       AuthRecordType = "api"
	AuthTypeOAuth     AuthRecordType = "oauth"
	AuthTypeWellKnown AuthRecordType = "wellknown"
)

// AuthRecord is one credential entry. Exactly one of Key, Access, or Token
// carries the secret, depending on Type.
type AuthRecord struct {
	Type   AuthRecordType `json:"type"`
	Key    string         `json:"key,omitempty"`
	Access string         `json:"access,omitempty"`
	Token  string         `json:"token,omitempty"`
}

// BearerToken extracts the bearer token for the record's shape.
// Returns false when the shape is unknown or the token is empty after trimming.
func (r AuthRecord) BearerToken() (string, bool) {
	var raw string
	switch r.Type {
	case AuthTypeAPI:
		raw = r.Key
	case AuthTypeOAuth:
		raw = r.Access
	case AuthTypeWellKnown:
		raw = r.Token
	default:
		return "", false
	}

	token := strings.TrimSpace(raw)
	if token == "" {
		return "", false
	}
	return token, true
}

// AuthAccessor is a host-bound callback returning the live auth record for
// one provider, or nil when the host has nothing for it. The host binds the
// provider id on its side; the accessor itself takes no arguments beyond ctx.
type AuthAccessor func(ctx context.Context) (*AuthRecord, error)

// CredentialSource resolves a bearer token for a provider through an ordered
// cascade: the live host accessor, the persisted auth-store file, and a
// direct API-key override as last resort. Failure at any step degrades to
// the next; exhausting the cascade yields "no token", never an error.
type CredentialSource struct {
	// Accessor is the live host callback, already scoped to the configured
	// auth provider id. May be nil.
	Accessor AuthAccessor

	// StorePath overrides the auth-store file location. Empty means the
	// per-user default.
	StorePath string

	// APIKey is the direct operator-supplied override, used last.
	APIKey string

	Logger *slog.Logger
}

// defaultAuthStorePath returns the fixed per-user auth-store location.
func defaultAuthStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "machina", "auth.json")
}

// ResolveToken walks the cascade for the given provider ids. The persisted
// store is consulted first under the configured auth-provider id, then under
// the raw target provider id.
func (s CredentialSource) ResolveToken(ctx context.Context, authProviderID, providerID string) (string, bool) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if s.Accessor != nil {
		record, err := s.Accessor(ctx)
		if err != nil {
			logger.Debug("live auth accessor failed, trying auth store",
				"provider", providerID, "error", err)
		} else if record != nil {
			if token, ok := record.BearerToken(); ok {
				logger.Debug("credential resolved via live accessor",
					observability.Redact([]any{
						"provider", providerID,
						"token", token,
					})...)
				return token, true
			}
		}
	}

	if token, ok := s.lookupStore(authProviderID, providerID, logger); ok {
		return token, true
	}

	if token := strings.TrimSpace(s.APIKey); token != "" {
		return token, true
	}

	return "", false
}

// lookupStore reads the persisted auth store and tries each candidate id in
// order. Read or parse failures degrade to "not found".
func (s CredentialSource) lookupStore(authProviderID, providerID string, logger *slog.Logger) (string, bool) {
	path := s.StorePath
	if path == "" {
		path = defaultAuthStorePath()
	}
	if path == "" {
		return "", false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Debug("auth store unreadable", "path", path, "error", err)
		}
		return "", false
	}

	var store map[string]AuthRecord
	if err := json.Unmarshal(data, &store); err != nil {
		logger.Debug("auth store malformed", "path", path, "error", err)
		return "", false
	}

	for _, id := range []string{authProviderID, providerID} {
		if id == "" {
			continue
		}
		record, ok := store[id]
		if !ok {
			continue
		}
		if token, ok := record.BearerToken(); ok {
			return token, true
		}
	}

	return "", false
}
