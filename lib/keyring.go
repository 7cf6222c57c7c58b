package lib

import (
	"encoding/json"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/schoolyear/runner-image-cli/static"
	"github.com/zalando/go-keyring"
)

func getServicePrincipalKeyringKeyName(clientID string) string {
	return "sp-" + clientID
}

type CachedServicePrincipal struct {
	ClientSecret string    `json:"client_secret"`
	TenantID     string    `json:"tenant_id"`
	SavedAt      time.Time `json:"saved_at"`
}

// KeyringSecrets caches service principal secrets in the OS keyring
type KeyringSecrets struct{}

// Get returns nil when nothing is cached for the client
func (KeyringSecrets) Get(clientID string) (*CachedServicePrincipal, error) {
	value, err := keyring.Get(static.KeyringServiceName, getServicePrincipalKeyringKeyName(clientID))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get service principal secret from local keyring")
	}

	var cached CachedServicePrincipal
	if err := json.Unmarshal([]byte(value), &cached); err != nil {
		return nil, errors.Wrap(err, "failed to parse service principal secret from local keyring")
	}

	return &cached, nil
}

func (KeyringSecrets) Set(clientID string, value CachedServicePrincipal) error {
	valueJson, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "failed to serialize service principal secret")
	}

	if err := keyring.Set(static.KeyringServiceName, getServicePrincipalKeyringKeyName(clientID), string(valueJson)); err != nil {
		return errors.Wrap(err, "failed to write service principal secret to local keyring")
	}

	return nil
}
