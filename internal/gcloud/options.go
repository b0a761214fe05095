// Package gcloud builds client options shared by the Google Cloud API clients.
package gcloud

import (
	"net/http"

	"github.com/yourusername/race-photo-sync/internal/config"
	"google.golang.org/api/option"
)

// ClientOptions returns the credential and endpoint options for a Google API client.
// An empty endpoint keeps the service default. When httpClient is set it replaces
// the authenticated transport, which is how tests and emulators are reached.
func ClientOptions(cfg *config.GoogleConfig, endpoint string, httpClient *http.Client) []option.ClientOption {
	var opts []option.ClientOption

	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	switch {
	case httpClient != nil:
		opts = append(opts, option.WithHTTPClient(httpClient), option.WithoutAuthentication())
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	return opts
}
