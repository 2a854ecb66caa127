package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ClinicalClient talks to the clinical-records application API: patient
// registration, token auth and delete-by-MRN.
type ClinicalClient struct {
	client   *resty.Client
	username string
	password string
}

func newClinicalClient(cfg *Config) *ClinicalClient {
	client := resty.New().
		SetBaseURL(cfg.ClinicalAPIBaseURL).
		SetTimeout(time.Duration(cfg.Timeout) * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &ClinicalClient{
		client:   client,
		username: cfg.ClinicalUsername,
		password: cfg.ClinicalPassword,
	}
}

// Register creates the patient in the clinical-records system. Non-2xx
// responses surface as a RegistrationError carrying the status code.
func (cc *ClinicalClient) Register(record *ClinicalRecord) (*RegistrationResponse, error) {
	var out RegistrationResponse

	resp, err := cc.client.R().
		SetBody(record).
		SetResult(&out).
		Post("/patient/registration/")
	if err != nil {
		return nil, &TransportError{Op: "patient registration", Err: err}
	}

	if resp.IsError() {
		return nil, &RegistrationError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	zapLogger.Info("patient registered",
		zap.String("username", record.Username),
		zap.Int("status", resp.StatusCode()))

	return &out, nil
}

// AuthToken exchanges the configured user credentials for an API token.
func (cc *ClinicalClient) AuthToken() (string, error) {
	var out struct {
		Token string `json:"token"`
	}

	resp, err := cc.client.R().
		SetBody(map[string]string{
			"username": cc.username,
			"password": cc.password,
		}).
		SetResult(&out).
		Post("/auth-token/")
	if err != nil {
		return "", &TransportError{Op: "clinical auth token request", Err: err}
	}

	if resp.StatusCode() != http.StatusOK || out.Token == "" {
		return "", &AuthError{Service: "clinical-records", StatusCode: resp.StatusCode()}
	}

	return out.Token, nil
}

// Delete removes a patient by MRN. It authenticates fresh, returns the HTTP
// status either way, and reports non-2xx as an error so callers can exit
// non-zero instead of silently dropping the failure.
func (cc *ClinicalClient) Delete(mrn string) (int, error) {
	token, err := cc.AuthToken()
	if err != nil {
		return 0, err
	}

	resp, err := cc.client.R().
		SetHeader("Authorization", "Token "+token).
		SetQueryParam("patient_id", mrn).
		Delete("/patient-app/delete/")
	if err != nil {
		return 0, &TransportError{Op: "patient delete", Err: err}
	}

	zapLogger.Info("patient delete attempted",
		zap.String("mrn", mrn),
		zap.Int("status", resp.StatusCode()))

	if resp.IsError() {
		return resp.StatusCode(), fmt.Errorf("delete of patient %s failed (%d): %s", mrn, resp.StatusCode(), string(resp.Body()))
	}

	return resp.StatusCode(), nil
}
