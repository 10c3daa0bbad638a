package secrets

import "context"

// Provider defines a generic secrets manager interface.
// Concrete implementations (AWS, GCP, etc.) can satisfy this.
type Provider interface {
	// GetSecret retrieves a secret by key/path and returns a key-value map.
	GetSecret(ctx context.Context, key string) (map[string]string, error)
}

// Credentials is the broker account triple stored under a single secret.
type Credentials struct {
	UserID    string `json:"user_id"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}
