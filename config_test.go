package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredConfigEnv(t *testing.T) {
	t.Helper()
	t.Setenv("EXCHANGE_BASE_URL", "https://exchange.example.com/fhir")
	t.Setenv("BROKER_BASE_URL", "https://broker.example.com/api/service")
	t.Setenv("CLINICAL_API_BASE_URL", "http://localhost:8000/api")
	t.Setenv("CLINICAL_FHIR_BASE_URL", "http://localhost:8080/fhir")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredConfigEnv(t)

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://exchange.example.com/fhir", cfg.ExchangeBaseURL)
	assert.Equal(t, "patients.csv", cfg.RosterFile)
	assert.Equal(t, "patients.json", cfg.IndexFile)
	assert.Equal(t, 30, cfg.Timeout)
	assert.Equal(t, 4, cfg.LookupWorkers)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredConfigEnv(t)
	t.Setenv("ROSTER_FILE", "roster.xlsx")
	t.Setenv("TIMEOUT", "10")
	t.Setenv("LOOKUP_WORKERS", "0")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "roster.xlsx", cfg.RosterFile)
	assert.Equal(t, 10, cfg.Timeout)
	// Worker count never drops below one
	assert.Equal(t, 1, cfg.LookupWorkers)
}

func TestLoadConfigMissingRequired(t *testing.T) {
	setRequiredConfigEnv(t)
	t.Setenv("EXCHANGE_BASE_URL", "")

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXCHANGE_BASE_URL")
}
