// Package app wires configured collaborators for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/hexsyn/intake/internal/config"
	"github.com/hexsyn/intake/internal/drive"
	"github.com/hexsyn/intake/internal/email"
	"github.com/hexsyn/intake/internal/google"
	"github.com/hexsyn/intake/internal/logger"
	"github.com/hexsyn/intake/internal/notify"
	"github.com/hexsyn/intake/internal/pipeline"
	"github.com/hexsyn/intake/internal/sheets"
	"github.com/hexsyn/intake/internal/storage"
	"github.com/hexsyn/intake/internal/templates"
	"github.com/hexsyn/intake/internal/validation"
)

// Services are the external collaborators of the intake pipeline. Sheets,
// Drive and MinIO are nil when not configured.
type Services struct {
	Credentials []byte
	Sheets      *sheets.RowLogger
	Drive       *drive.Uploader
	MinIO       *storage.MinIOUploader
	Transport   *email.Transport
	Templates   *templates.Registry
	Notifier    *notify.Notifier
	Validator   *validation.Validator
}

// Build constructs every configured collaborator. Missing Google
// credentials disable Sheets and Drive rather than failing startup.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Services, error) {
	s := &Services{}

	creds, err := google.Credentials(cfg.Google)
	switch {
	case errors.Is(err, google.ErrNotConfigured):
		log.Warn().Msg("Google service account not configured: spreadsheet log and Drive uploads disabled")
	case err != nil:
		return nil, err
	default:
		s.Credentials = creds
	}

	if s.Credentials != nil && cfg.Google.SpreadsheetID != "" {
		svc, err := sheets.NewService(ctx, s.Credentials)
		if err != nil {
			return nil, err
		}
		s.Sheets = sheets.NewRowLogger(svc, cfg.Google.SpreadsheetID, cfg.Google.AppendsPerSecond, log)
	}

	switch cfg.Storage.Provider {
	case "drive":
		if s.Credentials == nil {
			log.Warn().Msg("Drive storage selected without credentials: resumes will not be stored")
			break
		}
		svc, err := drive.NewService(ctx, s.Credentials)
		if err != nil {
			return nil, err
		}
		s.Drive = drive.NewUploader(svc, cfg.Google.DriveFolderID, log)
	case "minio":
		m, err := storage.NewMinIO(ctx, cfg.Storage.MinIO, log)
		if err != nil {
			return nil, err
		}
		s.MinIO = m
	}

	s.Transport = email.NewTransport(ctx, email.NewFactory(cfg.Email, s.Credentials), cfg.Timeouts.Verify, log)

	s.Templates, err = templates.New(cfg.App.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	s.Notifier = notify.New(s.Templates, s.Transport, notify.Config{
		FromName:     cfg.Email.FromName,
		FromAddress:  cfg.Email.FromAddress,
		ReplyTo:      cfg.Email.ReplyTo,
		AdminAddress: cfg.Email.AdminAddress,
		SendTimeout:  cfg.Timeouts.Send,
	}, log)

	s.Validator, err = validation.New()
	if err != nil {
		return nil, fmt.Errorf("failed to compile validation schemas: %w", err)
	}

	return s, nil
}

// Uploader returns the configured file provider, or nil
func (s *Services) Uploader() pipeline.FileUploader {
	switch {
	case s.Drive != nil:
		return s.Drive
	case s.MinIO != nil:
		return s.MinIO
	default:
		return nil
	}
}

// RowLogger returns the spreadsheet log, or nil
func (s *Services) RowLogger() pipeline.RowLogger {
	if s.Sheets == nil {
		return nil
	}
	return s.Sheets
}

// Pipeline builds the submission pipeline over the services
func (s *Services) Pipeline(cfg *config.Config, sink pipeline.Sink, log *logger.Logger) (*pipeline.Pipeline, error) {
	mode, err := pipeline.ParseMode(cfg.Dispatch.Mode)
	if err != nil {
		return nil, err
	}
	return pipeline.New(s.Validator, s.Uploader(), s.RowLogger(), s.Notifier, sink, log, pipeline.Options{
		Mode:          mode,
		AwaitRowLog:   cfg.Dispatch.AwaitRowLog,
		AdminAddress:  cfg.Email.AdminAddress,
		UploadTimeout: cfg.Timeouts.Upload,
		RowLogTimeout: cfg.Timeouts.RowLog,
	}), nil
}
