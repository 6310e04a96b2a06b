package storage

import "context"

const (
	tokenKey       = "auth_token"
	displayNameKey = "display_name"
)

// CredentialStore persists the auth token and display name as plain strings.
type CredentialStore struct {
	kv KV
}

func NewCredentialStore(kv KV) *CredentialStore {
	return &CredentialStore{kv: kv}
}

func (s *CredentialStore) Token(ctx context.Context) (string, error) {
	tok, err := s.kv.Get(ctx, tokenKey)
	if err == ErrNotFound {
		return "", nil
	}
	return tok, err
}

func (s *CredentialStore) SetToken(ctx context.Context, token string) error {
	return s.kv.Set(ctx, tokenKey, token)
}

func (s *CredentialStore) ClearToken(ctx context.Context) error {
	return s.kv.Delete(ctx, tokenKey)
}

func (s *CredentialStore) DisplayName(ctx context.Context) (string, error) {
	name, err := s.kv.Get(ctx, displayNameKey)
	if err == ErrNotFound {
		return "", nil
	}
	return name, err
}

func (s *CredentialStore) SetDisplayName(ctx context.Context, name string) error {
	return s.kv.Set(ctx, displayNameKey, name)
}

func (s *CredentialStore) ClearDisplayName(ctx context.Context) error {
	return s.kv.Delete(ctx, displayNameKey)
}
