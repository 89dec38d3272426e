// Package drive stores uploaded resumes in Google Drive.
package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/hexsyn/intake/internal/google"
	"github.com/hexsyn/intake/internal/logger"
	"github.com/hexsyn/intake/internal/model"
	"github.com/hexsyn/intake/internal/storage"
)

const folderMimeType = "application/vnd.google-apps.folder"

// DefaultFolderName is used by CreateFolder when no name is given
const DefaultFolderName = "Career Applications - Resumes"

// ErrEmptyFile is returned when there is nothing to upload
var ErrEmptyFile = errors.New("drive: file content and name are required")

// NewService creates a Drive API client from service account credentials
func NewService(ctx context.Context, credentials []byte) (*drive.Service, error) {
	client, err := google.NewHTTPClient(ctx, credentials, drive.DriveFileScope)
	if err != nil {
		return nil, err
	}
	svc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("drive: failed to create service: %w", err)
	}
	return svc, nil
}

// Uploader stores attachments in a Drive folder
type Uploader struct {
	svc      *drive.Service
	folderID string
	log      *logger.Logger
	now      func() time.Time
}

// NewUploader creates an Uploader. An empty folderID stores files in the
// service account's root.
func NewUploader(svc *drive.Service, folderID string, log *logger.Logger) *Uploader {
	return &Uploader{
		svc:      svc,
		folderID: folderID,
		log:      log.WithComponent("drive"),
		now:      time.Now,
	}
}

// Upload stores att and makes it readable by anyone with the link
func (u *Uploader) Upload(ctx context.Context, att *model.Attachment, ownerName, label string) (model.UploadResult, error) {
	if att == nil || len(att.Data) == 0 || att.FileName == "" {
		return model.UploadResult{}, ErrEmptyFile
	}

	meta := &drive.File{
		Name:     storage.FileName(u.now(), ownerName, label, att.FileName),
		MimeType: att.ContentType,
	}
	if u.folderID != "" {
		meta.Parents = []string{u.folderID}
	}

	file, err := u.svc.Files.Create(meta).
		Media(bytes.NewReader(att.Data), googleapi.ContentType(att.ContentType)).
		Fields("id,name,webViewLink,webContentLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return model.UploadResult{}, fmt.Errorf("drive: failed to upload %s: %w", att.FileName, err)
	}

	_, err = u.svc.Permissions.Create(file.Id, &drive.Permission{Role: "reader", Type: "anyone"}).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		u.log.Warn().Err(err).Str("file_id", file.Id).Msg("Failed to share uploaded file")
	}

	u.log.Info().
		Str("file_id", file.Id).
		Str("file_name", file.Name).
		Int64("size", att.Size()).
		Msg("Resume uploaded")

	return model.UploadResult{
		FileID:       file.Id,
		FileName:     file.Name,
		ViewLink:     file.WebViewLink,
		DownloadLink: file.WebContentLink,
	}, nil
}

// CreateFolder creates a folder for resumes and returns its ID
func (u *Uploader) CreateFolder(ctx context.Context, name string) (string, error) {
	if name == "" {
		name = DefaultFolderName
	}
	meta := &drive.File{Name: name, MimeType: folderMimeType}
	if u.folderID != "" {
		meta.Parents = []string{u.folderID}
	}

	folder, err := u.svc.Files.Create(meta).Fields("id,name").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("drive: failed to create folder: %w", err)
	}
	u.log.Info().Str("folder_id", folder.Id).Str("name", folder.Name).Msg("Created folder")
	return folder.Id, nil
}

// Delete removes a stored file
func (u *Uploader) Delete(ctx context.Context, fileID string) error {
	if err := u.svc.Files.Delete(fileID).SupportsAllDrives(true).Context(ctx).Do(); err != nil {
		return fmt.Errorf("drive: failed to delete %s: %w", fileID, err)
	}
	u.log.Info().Str("file_id", fileID).Msg("Deleted file")
	return nil
}
