package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// AuthClient wraps Firebase token verification. Every registry and dispatch
// operation requires an identity verified through it first.
type AuthClient struct {
	client *auth.Client
}

func NewAuthClient(client *auth.Client) *AuthClient {
	return &AuthClient{
		client: client,
	}
}

// VerifyToken resolves a bearer credential to the authenticated user id.
func (f *AuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}

	return result.UID, nil
}
