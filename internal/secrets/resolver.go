package secrets

import (
	"context"
	"errors"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// ErrNoAPIKey is returned when no source yields a usable credential.
var ErrNoAPIKey = errors.New("no API key available")

// Pasted keys sometimes arrive wrapped in invisible or copy-paste artifacts;
// when a UUID-shaped substring is present we keep only that.
var uuidPattern = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// Resolver resolves the provider API key from, in priority order: the
// persistent secret store, a process environment variable, and a bundled
// .env-style configuration file. A key found in a fallback source is written
// back to the store so future resolutions prefer it.
type Resolver struct {
	store       Store
	secretName  string
	envVar      string
	bundledPath string
}

func NewResolver(store Store, secretName, envVar, bundledPath string) *Resolver {
	return &Resolver{
		store:       store,
		secretName:  secretName,
		envVar:      envVar,
		bundledPath: bundledPath,
	}
}

// Resolve returns the sanitized API key, or ErrNoAPIKey.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	if r.store != nil {
		stored, err := r.store.Get(ctx, r.secretName)
		if err != nil {
			log.Warn().Err(err).Msg("Secret store read failed, falling back")
		} else if key := strings.TrimSpace(stored); key != "" {
			return Sanitize(key), nil
		}
	}

	if key := strings.TrimSpace(os.Getenv(r.envVar)); key != "" {
		return r.backfill(ctx, Sanitize(key), "environment"), nil
	}

	if key := strings.TrimSpace(r.bundledValue()); key != "" {
		return r.backfill(ctx, Sanitize(key), "bundled config"), nil
	}

	return "", ErrNoAPIKey
}

func (r *Resolver) bundledValue() string {
	if r.bundledPath == "" {
		return ""
	}
	values, err := godotenv.Read(r.bundledPath)
	if err != nil {
		log.Debug().Err(err).Str("path", r.bundledPath).Msg("No bundled configuration")
		return ""
	}
	return values[r.envVar]
}

// backfill writes a key found in a fallback source into the persistent store.
func (r *Resolver) backfill(ctx context.Context, key, source string) string {
	if r.store == nil {
		return key
	}
	if err := r.store.Set(ctx, r.secretName, key); err != nil {
		log.Warn().Err(err).Str("source", source).Msg("Backfilling secret store failed")
	} else {
		log.Debug().Str("source", source).Msg("Backfilled API key into secret store")
	}
	return key
}

// Sanitize trims a raw candidate and extracts an embedded UUID-shaped key
// when one is present; otherwise the trimmed string is returned unchanged.
func Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if match := uuidPattern.FindString(trimmed); match != "" {
		return match
	}
	return trimmed
}
