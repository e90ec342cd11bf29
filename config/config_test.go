package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
http:
  address: ":9090"
database:
  host: localhost
  port: 5432
  user: broker
  password: secret
  name: flights
  ssl_mode: disable
provider:
  shared_url: http://provider.test/shared
  air_url: http://provider.test/air
  client_id: ApiIntegrationNew
  user_name: agent
  password: ${TEST_PROVIDER_PASSWORD}
payment:
  base_url: http://pay.test
  merchant_id: MERCHANT
  salt_key: ${TEST_SALT_KEY}
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_ExpandsEnvAndDefaults(t *testing.T) {
	t.Setenv("TEST_PROVIDER_PASSWORD", "p@ss")
	t.Setenv("TEST_SALT_KEY", "salt")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, "p@ss", cfg.Provider.Password)
	assert.Equal(t, "salt", cfg.Payment.SaltKey)
	assert.Equal(t, int64(100), cfg.Payment.Amount)
	assert.Equal(t, 1, cfg.Payment.SaltIndex)
	assert.Equal(t, 15*time.Hour, cfg.Session.TraceTTL)
	assert.Equal(t, 30*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "kafka", cfg.Notifications.Mode)
	assert.Equal(t, "host=localhost port=5432 user=broker password=secret dbname=flights sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfig_MissingCredentials(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "http:\n  address: \":8080\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider credentials are required")
	assert.Contains(t, err.Error(), "payment.base_url")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestValidate_UnknownNotificationMode(t *testing.T) {
	cfg := Config{
		Provider:      ProviderConfig{SharedURL: "a", AirURL: "b", ClientID: "c", UserName: "d", Password: "e"},
		Payment:       PaymentConfig{BaseURL: "f", MerchantID: "g", SaltKey: "h"},
		Notifications: NotificationsConfig{Mode: "pigeon"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pigeon")
}
