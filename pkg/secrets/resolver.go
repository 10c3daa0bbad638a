package secrets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Resolver resolves broker credentials from a Provider with TTL caching, so a
// long-lived process does not hit the secrets backend on every re-login.
type Resolver struct {
	logger   *zap.Logger
	provider Provider
	cache    *Cache[Credentials]
}

// NewResolver constructs a Resolver.
func NewResolver(logger *zap.Logger, provider Provider, cache *Cache[Credentials]) *Resolver {
	return &Resolver{
		logger:   logger,
		provider: provider,
		cache:    cache,
	}
}

// Resolve returns the credentials stored under secretID.
func (r *Resolver) Resolve(ctx context.Context, secretID string) (Credentials, error) {
	if creds, ok := r.cache.Get(secretID); ok {
		return creds, nil
	}

	values, err := r.provider.GetSecret(ctx, secretID)
	if err != nil {
		return Credentials{}, fmt.Errorf("resolve credentials [%s]: %w", secretID, err)
	}

	creds := Credentials{
		UserID:    values["user_id"],
		Password:  values["password"],
		Password2: values["password2"],
	}
	if creds.UserID == "" || creds.Password == "" {
		return Credentials{}, fmt.Errorf("secret [%s] missing user_id or password", secretID)
	}

	r.cache.Put(secretID, creds)
	r.logger.Info("secrets.credentials_resolved", zap.String("secret_id", secretID))

	return creds, nil
}
