package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// ExchangeClient queries the health-data exchange. Every call fetches a
// fresh bearer token through the TokenService.
type ExchangeClient struct {
	Host   string
	tokens *TokenService
}

func newExchangeClient(cfg *Config, tokens *TokenService) *ExchangeClient {
	return &ExchangeClient{
		Host:   cfg.ExchangeBaseURL,
		tokens: tokens,
	}
}

func (ec *ExchangeClient) headers() (map[string]string, error) {
	token, err := ec.tokens.ExchangeToken()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"Authorization":   "Bearer " + token,
		"Accept":          "application/json",
		"Accept-Encoding": "gzip",
		"Content-Type":    "application/json",
	}, nil
}

// FindPatient searches the exchange by given name, family name and ISO
// birthdate. A search with total == 0 returns ErrPatientNotFound; more than
// one match resolves deterministically to the first entry, logged for audit.
func (ec *ExchangeClient) FindPatient(ctx context.Context, firstName, lastName, birthDate string) (*PatientResource, error) {
	// Create span
	span, ctx := apm.StartSpan(ctx, "Find Patient", "Exchange")
	defer span.End()

	headers, err := ec.headers()
	if err != nil {
		return nil, err
	}

	// Initialize query parameters
	queryParams := url.Values{}
	queryParams.Add("given", firstName)
	queryParams.Add("family", lastName)
	queryParams.Add("birthdate", birthDate)

	bundle, err := ec.getBundle(ctx, "/Patient", queryParams, headers)
	if err != nil {
		return nil, err
	}

	if bundle.Total == 0 || len(bundle.Entry) == 0 {
		return nil, ErrPatientNotFound
	}
	if bundle.Total > 1 {
		zapLogger.Warn("multiple exchange matches, using first entry",
			zap.Int("total", bundle.Total),
			zap.String("given", firstName),
			zap.String("family", lastName),
			zap.String("birthdate", birthDate))
	}

	var patient PatientResource
	if err := json.Unmarshal(bundle.Entry[0].Resource, &patient); err != nil {
		return nil, fmt.Errorf("error unmarshalling Patient: %s:%s", err, string(bundle.Entry[0].Resource))
	}

	return &patient, nil
}

// ListConditions retrieves the exchange's conditions for a patient. Failures
// come back as a structured error, never a panic; callers must check before
// iterating.
func (ec *ExchangeClient) ListConditions(ctx context.Context, exchangePatientID string) ([]*ConditionResource, error) {
	// Create span
	span, ctx := apm.StartSpan(ctx, "List Conditions", "Exchange")
	defer span.End()

	headers, err := ec.headers()
	if err != nil {
		return nil, err
	}

	// Initialize query parameters
	queryParams := url.Values{}
	queryParams.Add("patient", exchangePatientID)

	bundle, err := ec.getBundle(ctx, "/Condition", queryParams, headers)
	if err != nil {
		return nil, err
	}

	var conditions []*ConditionResource
	for _, entry := range bundle.Entry {
		var condition ConditionResource
		if err := json.Unmarshal(entry.Resource, &condition); err != nil {
			return nil, fmt.Errorf("error unmarshalling Condition: %s:%s", err, string(entry.Resource))
		}
		conditions = append(conditions, &condition)
	}

	return conditions, nil
}

func (ec *ExchangeClient) getBundle(ctx context.Context, path string, queryParams url.Values, headers map[string]string) (*Bundle, error) {
	resp, err := sendRequest(ctx, http.MethodGet, ec.Host+path, queryParams, headers, nil)
	if err != nil {
		return nil, &TransportError{Op: "exchange GET " + path, Err: err}
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, &TransportError{Op: "exchange GET " + path, Err: err}
	}

	// Verify status code
	if resp.StatusCode >= 400 {
		return nil, &TransportError{
			Op:  "exchange GET " + path,
			Err: fmt.Errorf("request failed (%d): %s", resp.StatusCode, string(body)),
		}
	}

	// Unmarshal data into struct
	var resource Resource
	if err := json.Unmarshal(body, &resource); err != nil {
		return nil, fmt.Errorf("failed to decode resourceType: %w", err)
	}
	if resource.ResourceType != "Bundle" {
		return nil, fmt.Errorf("expected a Bundle, got %q", resource.ResourceType)
	}

	var bundle Bundle
	if err := json.Unmarshal(body, &bundle); err != nil {
		return nil, fmt.Errorf("error unmarshalling bundle: %s", err)
	}

	return &bundle, nil
}
