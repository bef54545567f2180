// Package googleauth builds client options for the Google Sheets and
// Drive services from the configured service account.
package googleauth

import (
	"fmt"
	"os"

	"github.com/auditnote/auditnote-api/internal/config"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scopes requested for the service account
var Scopes = []string{sheets.SpreadsheetsScope, drive.DriveScope}

// ClientOptions prefers the credentials file when it exists and falls back
// to inline JSON from the environment.
func ClientOptions(cfg *config.Config) ([]option.ClientOption, error) {
	opts := []option.ClientOption{option.WithScopes(Scopes...)}

	if cfg.GoogleCredentialsFile != "" {
		if _, err := os.Stat(cfg.GoogleCredentialsFile); err == nil {
			return append(opts, option.WithCredentialsFile(cfg.GoogleCredentialsFile)), nil
		}
	}
	if cfg.GoogleCredentialsJSON != "" {
		return append(opts, option.WithCredentialsJSON([]byte(cfg.GoogleCredentialsJSON))), nil
	}
	return nil, fmt.Errorf("no Google credentials: set GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON")
}
