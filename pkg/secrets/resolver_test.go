package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	calls  int
	secret map[string]string
	err    error
}

func (f *fakeProvider) GetSecret(_ context.Context, _ string) (map[string]string, error) {
	f.calls++
	return f.secret, f.err
}

func TestResolverCachesCredentials(t *testing.T) {
	provider := &fakeProvider{secret: map[string]string{
		"user_id": "acct1", "password": "pw", "password2": "pw2",
	}}
	r := NewResolver(zap.NewNop(), provider, NewCache[Credentials](time.Minute))

	creds, err := r.Resolve(context.Background(), "broker/acct1")
	require.NoError(t, err)
	assert.Equal(t, "acct1", creds.UserID)
	assert.Equal(t, "pw", creds.Password)
	assert.Equal(t, "pw2", creds.Password2)

	_, err = r.Resolve(context.Background(), "broker/acct1")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
}

func TestResolverRejectsIncompleteSecret(t *testing.T) {
	provider := &fakeProvider{secret: map[string]string{"user_id": "acct1"}}
	r := NewResolver(zap.NewNop(), provider, NewCache[Credentials](time.Minute))

	_, err := r.Resolve(context.Background(), "broker/acct1")
	assert.Error(t, err)
}

func TestResolverProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("access denied")}
	r := NewResolver(zap.NewNop(), provider, NewCache[Credentials](time.Minute))

	_, err := r.Resolve(context.Background(), "broker/acct1")
	assert.Error(t, err)
}
