package main

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	ExchangeBaseURL     string `mapstructure:"EXCHANGE_BASE_URL"`
	BrokerBaseURL       string `mapstructure:"BROKER_BASE_URL"`
	BrokerClientID      string `mapstructure:"BROKER_CLIENT_ID"`
	BrokerClientSecret  string `mapstructure:"BROKER_CLIENT_SECRET"`
	ClinicalAPIBaseURL  string `mapstructure:"CLINICAL_API_BASE_URL"`
	ClinicalFHIRBaseURL string `mapstructure:"CLINICAL_FHIR_BASE_URL"`
	ClinicalUsername    string `mapstructure:"CLINICAL_USERNAME"`
	ClinicalPassword    string `mapstructure:"CLINICAL_PASSWORD"`
	RosterFile          string `mapstructure:"ROSTER_FILE"`
	IndexFile           string `mapstructure:"INDEX_FILE"`
	Timeout             int    `mapstructure:"TIMEOUT"`
	LookupWorkers       int    `mapstructure:"LOOKUP_WORKERS"`
}

func loadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ROSTER_FILE", "patients.csv")
	v.SetDefault("INDEX_FILE", "patients.json")
	v.SetDefault("TIMEOUT", 30)
	v.SetDefault("LOOKUP_WORKERS", 4)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("EXCHANGE_BASE_URL")
	v.BindEnv("BROKER_BASE_URL")
	v.BindEnv("BROKER_CLIENT_ID")
	v.BindEnv("BROKER_CLIENT_SECRET")
	v.BindEnv("CLINICAL_API_BASE_URL")
	v.BindEnv("CLINICAL_FHIR_BASE_URL")
	v.BindEnv("CLINICAL_USERNAME")
	v.BindEnv("CLINICAL_PASSWORD")
	v.BindEnv("ROSTER_FILE")
	v.BindEnv("INDEX_FILE")
	v.BindEnv("TIMEOUT")
	v.BindEnv("LOOKUP_WORKERS")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	for name, value := range map[string]string{
		"EXCHANGE_BASE_URL":      cfg.ExchangeBaseURL,
		"BROKER_BASE_URL":        cfg.BrokerBaseURL,
		"CLINICAL_API_BASE_URL":  cfg.ClinicalAPIBaseURL,
		"CLINICAL_FHIR_BASE_URL": cfg.ClinicalFHIRBaseURL,
	} {
		if value == "" {
			return nil, fmt.Errorf("%s is required", name)
		}
	}

	if cfg.LookupWorkers < 1 {
		cfg.LookupWorkers = 1
	}

	return cfg, nil
}
