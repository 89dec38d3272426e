// Package google builds service-account clients for the Google APIs.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2/google"

	"github.com/hexsyn/intake/internal/config"
)

// ErrNotConfigured is returned when no service account is configured
var ErrNotConfigured = errors.New("google service account not configured")

type serviceAccount struct {
	Type                    string `json:"type"`
	ProjectID               string `json:"project_id"`
	PrivateKeyID            string `json:"private_key_id"`
	PrivateKey              string `json:"private_key"`
	ClientEmail             string `json:"client_email"`
	ClientID                string `json:"client_id"`
	AuthURI                 string `json:"auth_uri"`
	TokenURI                string `json:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url"`
	ClientX509CertURL       string `json:"client_x509_cert_url"`
}

// Credentials returns the service account JSON. A complete credentials
// document in config wins; otherwise one is assembled from the individual
// fields. Escaped "\n" sequences in the private key are expanded, as they
// are in single-line environment variables.
func Credentials(cfg config.GoogleConfig) ([]byte, error) {
	if cfg.CredentialsJSON != "" {
		return []byte(cfg.CredentialsJSON), nil
	}
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	sa := serviceAccount{
		Type:                    "service_account",
		ProjectID:               cfg.ProjectID,
		PrivateKeyID:            cfg.PrivateKeyID,
		PrivateKey:              strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n"),
		ClientEmail:             cfg.ClientEmail,
		ClientID:                cfg.ClientID,
		AuthURI:                 "https://accounts.google.com/o/oauth2/auth",
		TokenURI:                "https://oauth2.googleapis.com/token",
		AuthProviderX509CertURL: "https://www.googleapis.com/oauth2/v1/certs",
		ClientX509CertURL:       "https://www.googleapis.com/robot/v1/metadata/x509/" + cfg.ClientEmail,
	}

	data, err := json.Marshal(sa)
	if err != nil {
		return nil, fmt.Errorf("encode service account: %w", err)
	}
	return data, nil
}

// NewHTTPClient returns an HTTP client authorised for scopes
func NewHTTPClient(ctx context.Context, credentials []byte, scopes ...string) (*http.Client, error) {
	if len(credentials) == 0 {
		return nil, ErrNotConfigured
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentials, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	return jwtConfig.Client(ctx), nil
}
