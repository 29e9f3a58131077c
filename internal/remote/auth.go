package remote

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// CredentialStore extends CredentialSource with the ability to clear a
// credential the remote has rejected.
type CredentialStore interface {
	CredentialSource
	Clear() error
}

// Guard validates the stored credential and intercepts authorization
// failures from any remote call.
type Guard struct {
	client *Client
	creds  CredentialStore
}

// NewGuard creates a Guard sharing the given client and credentials.
func NewGuard(client *Client, creds CredentialStore) *Guard {
	return &Guard{client: client, creds: creds}
}

// Validate probes the identity endpoint and returns the credential's
// login name. Used at startup and before batch operations.
func (g *Guard) Validate(ctx context.Context) (string, error) {
	var resp struct {
		Login string `json:"login"`
	}
	if err := g.client.do(ctx, "GET", "/user", nil, &resp); err != nil {
		return "", err
	}
	return resp.Login, nil
}

// InterceptError reports whether err is an authorization failure. When
// it is, the stored credential is cleared so the user gets a reconnect
// prompt instead of repeated identical failures, and batch loops can
// abort their remaining items immediately.
func (g *Guard) InterceptError(err error) bool {
	if err == nil || !IsAuth(err) {
		return false
	}
	if clearErr := g.creds.Clear(); clearErr != nil {
		log.WithError(clearErr).Warn("could not clear rejected credential")
	}
	return true
}
