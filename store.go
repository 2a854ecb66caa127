package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.elastic.co/apm"
)

// ConditionStore writes mapped Condition resources to the clinical FHIR
// endpoint.
type ConditionStore struct {
	Host string
}

func newConditionStore(cfg *Config) *ConditionStore {
	return &ConditionStore{Host: cfg.ClinicalFHIRBaseURL}
}

func (cs *ConditionStore) CreateCondition(ctx context.Context, condition *Condition) error {
	// Create span
	span, ctx := apm.StartSpan(ctx, "Create Condition", "Clinical FHIR")
	defer span.End()

	// Build request body
	body, err := json.Marshal(condition)
	if err != nil {
		return err
	}

	headers := map[string]string{
		"Content-Type": "application/fhir+json",
		"Accept":       "application/json",
	}

	resp, err := sendRequest(ctx, http.MethodPost, cs.Host+"/Condition", nil, headers, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Op: "condition create", Err: err}
	}

	respBody, err := readBody(resp)
	if err != nil {
		return &TransportError{Op: "condition create", Err: err}
	}

	// Verify status code
	if resp.StatusCode >= 300 {
		return fmt.Errorf("condition create failed (Status Code - %d): %s", resp.StatusCode, string(respBody))
	}

	return nil
}
