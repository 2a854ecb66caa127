package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exchangePatientJSON = `{
	"resourceType": "Patient",
	"id": "abc",
	"identifier": [{"type": {"coding": [{"code": "MR"}]}, "value": "999"}],
	"name": [{"given": ["Jane"], "family": "Doe"}],
	"birthDate": "1980-01-02",
	"gender": "female",
	"address": [{"line": ["1 Main"], "city": "X", "state": "Y", "postalCode": "00000"}]
}`

// newFakeExchange serves /Patient and /Condition bundles, asserting the
// bearer header minted by the fake broker on every request.
func newFakeExchange(t *testing.T, patientTotal int, conditionStatus int, conditionJSON ...string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/Patient", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer exchange-token", r.Header.Get("Authorization"))
		assert.Equal(t, "Jane", r.URL.Query().Get("given"))
		assert.Equal(t, "Doe", r.URL.Query().Get("family"))
		assert.Equal(t, "1980-01-02", r.URL.Query().Get("birthdate"))

		entries := ""
		for i := 0; i < patientTotal; i++ {
			if i > 0 {
				entries += ","
			}
			entries += fmt.Sprintf(`{"resource": %s}`, exchangePatientJSON)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"resourceType": "Bundle", "total": %d, "entry": [%s]}`, patientTotal, entries)
	})
	mux.HandleFunc("/Condition", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer exchange-token", r.Header.Get("Authorization"))
		assert.Equal(t, "abc", r.URL.Query().Get("patient"))

		if conditionStatus >= 400 {
			http.Error(w, "exchange unavailable", conditionStatus)
			return
		}

		entries := ""
		for i, condition := range conditionJSON {
			if i > 0 {
				entries += ","
			}
			entries += fmt.Sprintf(`{"resource": %s}`, condition)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"resourceType": "Bundle", "total": %d, "entry": [%s]}`, len(conditionJSON), entries)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestExchangeClient(t *testing.T, exchangeURL string) *ExchangeClient {
	t.Helper()

	broker := newFakeBroker(t)
	cfg := brokerConfig(broker.URL)
	cfg.ExchangeBaseURL = exchangeURL
	return newExchangeClient(cfg, newTokenService(cfg))
}

func TestFindPatientSingleMatch(t *testing.T) {
	exchange := newFakeExchange(t, 1, http.StatusOK)
	client := newTestExchangeClient(t, exchange.URL)

	patient, err := client.FindPatient(context.Background(), "Jane", "Doe", "1980-01-02")
	require.NoError(t, err)

	assert.Equal(t, "abc", patient.Id)
	assert.Equal(t, "1980-01-02", patient.BirthDate)
	assert.Equal(t, "female", patient.Gender)
}

func TestFindPatientNotFound(t *testing.T) {
	exchange := newFakeExchange(t, 0, http.StatusOK)
	client := newTestExchangeClient(t, exchange.URL)

	_, err := client.FindPatient(context.Background(), "Jane", "Doe", "1980-01-02")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestFindPatientMultipleMatchesPicksFirst(t *testing.T) {
	exchange := newFakeExchange(t, 3, http.StatusOK)
	client := newTestExchangeClient(t, exchange.URL)

	patient, err := client.FindPatient(context.Background(), "Jane", "Doe", "1980-01-02")
	require.NoError(t, err)
	assert.Equal(t, "abc", patient.Id)
}

func TestFindPatientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestExchangeClient(t, server.URL)

	_, err := client.FindPatient(context.Background(), "Jane", "Doe", "1980-01-02")
	require.Error(t, err)

	var transportErr *TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestFindPatientAuthFailureSurfaces(t *testing.T) {
	exchange := newFakeExchange(t, 1, http.StatusOK)

	broker := newFakeBroker(t)
	cfg := brokerConfig(broker.URL)
	cfg.BrokerClientSecret = "wrong"
	cfg.ExchangeBaseURL = exchange.URL
	client := newExchangeClient(cfg, newTokenService(cfg))

	_, err := client.FindPatient(context.Background(), "Jane", "Doe", "1980-01-02")
	require.Error(t, err)

	var authErr *AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestListConditions(t *testing.T) {
	exchange := newFakeExchange(t, 1, http.StatusOK,
		`{"resourceType": "Condition", "id": "c1", "code": {"coding": [{"system": "s", "code": "x", "display": "X"}]}}`,
		`{"resourceType": "Condition", "id": "c2"}`,
	)
	client := newTestExchangeClient(t, exchange.URL)

	conditions, err := client.ListConditions(context.Background(), "abc")
	require.NoError(t, err)

	require.Len(t, conditions, 2)
	assert.Equal(t, "c1", conditions[0].Id)
	require.NotNil(t, conditions[0].Code)
	assert.Equal(t, "x", conditions[0].Code.Coding[0].Code)
	assert.Nil(t, conditions[1].Code)
}

func TestListConditionsServerError(t *testing.T) {
	exchange := newFakeExchange(t, 1, http.StatusBadGateway)
	client := newTestExchangeClient(t, exchange.URL)

	_, err := client.ListConditions(context.Background(), "abc")
	require.Error(t, err)

	var transportErr *TransportError
	assert.ErrorAs(t, err, &transportErr)
}
