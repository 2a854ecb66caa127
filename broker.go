package main

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// TokenService obtains bearer tokens through the service broker. Getting an
// exchange token is a chained credential exchange: the client id/secret pair
// buys a broker token, which in turn buys the exchange token. Tokens are not
// cached; every call re-authenticates.
type TokenService struct {
	client       *resty.Client
	clientID     string
	clientSecret string
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Error       string `json:"error"`
	Message     string `json:"message"`
}

func newTokenService(cfg *Config) *TokenService {
	client := resty.New().
		SetBaseURL(cfg.BrokerBaseURL).
		SetTimeout(time.Duration(cfg.Timeout) * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &TokenService{
		client:       client,
		clientID:     cfg.BrokerClientID,
		clientSecret: cfg.BrokerClientSecret,
	}
}

// ServiceToken exchanges the client credentials for a broker access token.
func (ts *TokenService) ServiceToken() (string, error) {
	var out tokenResponse
	var apiErr tokenResponse

	resp, err := ts.client.R().
		SetBody(map[string]string{
			"client_id":     ts.clientID,
			"client_secret": ts.clientSecret,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/generate-access-token/")
	if err != nil {
		return "", &TransportError{Op: "broker token request", Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		return "", &AuthError{Service: "broker", StatusCode: resp.StatusCode(), Detail: apiErr.Error}
	}
	if out.AccessToken == "" {
		return "", &AuthError{Service: "broker", StatusCode: resp.StatusCode(), Detail: "access_token missing from response"}
	}

	return out.AccessToken, nil
}

// ExchangeToken presents a fresh broker token to obtain an exchange access
// token.
func (ts *TokenService) ExchangeToken() (string, error) {
	serviceToken, err := ts.ServiceToken()
	if err != nil {
		return "", err
	}

	var out tokenResponse
	var apiErr tokenResponse

	resp, err := ts.client.R().
		SetAuthToken(serviceToken).
		SetBody(map[string]string{}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/hg/token/")
	if err != nil {
		return "", &TransportError{Op: "exchange token request", Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		return "", &AuthError{Service: "exchange", StatusCode: resp.StatusCode(), Detail: apiErr.Message}
	}
	if out.AccessToken == "" {
		return "", &AuthError{Service: "exchange", StatusCode: resp.StatusCode(), Detail: "access_token missing from response"}
	}

	logTokenClaims(out.AccessToken)

	return out.AccessToken, nil
}

// logTokenClaims records issuer and expiry of the exchange token for audit.
// The token is parsed unverified; the exchange verifies it, not us. Opaque
// (non-JWT) tokens are logged without claims.
func logTokenClaims(raw string) {
	token, _, err := new(jwt.Parser).ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		zapLogger.Info("exchange token issued")
		return
	}

	fields := []zap.Field{}
	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		if iss, ok := claims["iss"].(string); ok {
			fields = append(fields, zap.String("issuer", iss))
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			fields = append(fields, zap.Time("expires", exp.Time))
		}
	}
	zapLogger.Info("exchange token issued", fields...)
}
