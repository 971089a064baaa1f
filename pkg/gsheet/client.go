package gsheet

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/healthclarity/lead-intake-api/pkg/config"
)

// NewService returns a Sheets client authenticated with the configured
// service account. Inline JSON credentials win over a credentials file.
func NewService(ctx context.Context, cfg config.SheetsConfig) (*sheets.Service, error) {
	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.CredentialsJSON), sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("parse service account credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	} else {
		opts = append(opts,
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(sheets.SpreadsheetsScope),
		)
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init sheets client: %w", err)
	}
	return svc, nil
}
