// Package config loads the defaults for command flags from a config file and dotenv files
package config

import (
	"bytes"
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/friendsofgo/errors"
	"github.com/joho/godotenv"
)

// Settings hold flag defaults. Empty fields mean "not configured".
type Settings struct {
	SubscriptionID string `json:"subscriptionId,omitempty"`
	ResourceGroup  string `json:"resourceGroup,omitempty"`
	Location       string `json:"location,omitempty"`
	ClientID       string `json:"clientId,omitempty"`
	ClientSecret   string `json:"clientSecret,omitempty"`
	TenantID       string `json:"tenantId,omitempty"`
	RepositoryRoot string `json:"repositoryRoot,omitempty"`
	AdminUsername  string `json:"adminUsername,omitempty"`
	AdminPassword  string `json:"adminPassword,omitempty"`
	LogURI         string `json:"logUri,omitempty"`
	PowerShell     string `json:"powerShell,omitempty"`
}

const (
	EnvSubscriptionID = "AZURE_SUBSCRIPTION_ID"
	EnvResourceGroup  = "AZURE_RESOURCE_GROUP"
	EnvLocation       = "AZURE_LOCATION"
	EnvClientID       = "AZURE_CLIENT_ID"
	EnvClientSecret   = "AZURE_CLIENT_SECRET"
	EnvTenantID       = "AZURE_TENANT_ID"
	EnvRepositoryRoot = "RUNNER_IMAGE_REPOSITORY_ROOT"
	EnvAdminUsername  = "RUNNER_IMAGE_ADMIN_USERNAME"
	EnvAdminPassword  = "RUNNER_IMAGE_ADMIN_PASSWORD"
	EnvLogURI         = "RUNNER_IMAGE_LOG_URI"
	EnvPowerShell     = "RUNNER_IMAGE_POWERSHELL"
)

// envKeys maps environment variables to the json keys of Settings
var envKeys = map[string]string{
	EnvSubscriptionID: "subscriptionId",
	EnvResourceGroup:  "resourceGroup",
	EnvLocation:       "location",
	EnvClientID:       "clientId",
	EnvClientSecret:   "clientSecret",
	EnvTenantID:       "tenantId",
	EnvRepositoryRoot: "repositoryRoot",
	EnvAdminUsername:  "adminUsername",
	EnvAdminPassword:  "adminPassword",
	EnvLogURI:         "logUri",
	EnvPowerShell:     "powerShell",
}

// Load reads the config file (optional) and layers the dotenv files on top of it.
// Later env files override earlier ones. The process environment is not read or modified.
func Load(configPath string, envFiles []string) (Settings, error) {
	merged := []byte("{}")

	if configPath != "" {
		fileJSON, err := ReadFileAsJSON(configPath)
		if err != nil {
			return Settings{}, err
		}

		// unknown keys are only checked on the config file, env files may contain anything
		if _, err := decodeStrict(fileJSON); err != nil {
			return Settings{}, errors.Wrapf(err, "invalid config file %s", configPath)
		}

		merged, err = jsonpatch.MergePatch(merged, fileJSON)
		if err != nil {
			return Settings{}, errors.Wrap(err, "failed to merge config file")
		}
	}

	for _, envFile := range envFiles {
		envJSON, err := readEnvFileAsJSON(envFile)
		if err != nil {
			return Settings{}, err
		}

		merged, err = jsonpatch.MergePatch(merged, envJSON)
		if err != nil {
			return Settings{}, errors.Wrapf(err, "failed to merge env file %s", envFile)
		}
	}

	return decodeStrict(merged)
}

func readEnvFileAsJSON(path string) ([]byte, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read env file %s", path)
	}

	patch := make(map[string]string)
	for envKey, jsonKey := range envKeys {
		if value, ok := values[envKey]; ok && value != "" {
			patch[jsonKey] = value
		}
	}

	out, err := json.Marshal(patch)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize env file values")
	}
	return out, nil
}

func decodeStrict(data []byte) (Settings, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var settings Settings
	if err := decoder.Decode(&settings); err != nil {
		return Settings{}, errors.Wrap(err, "failed to parse config")
	}
	return settings, nil
}

// Or returns the first non-empty value
func Or(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
