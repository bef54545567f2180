package storage

import (
	"bytes"
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/auditnote/auditnote-api/internal/config"
	"github.com/auditnote/auditnote-api/internal/googleauth"
)

// DriveViewURL is the public view link of a Drive file
const DriveViewURL = "https://drive.google.com/uc?export=view&id=%s"

// DriveHost uploads evidence into one Drive folder and shares it publicly
type DriveHost struct {
	srv      *drive.Service
	folderID string
}

// NewDriveHost connects to Drive with the service account credentials
func NewDriveHost(ctx context.Context, cfg *config.Config, extra ...option.ClientOption) (*DriveHost, error) {
	opts, err := googleauth.ClientOptions(cfg)
	if err != nil && len(extra) == 0 {
		return nil, err
	}
	srv, err := drive.NewService(ctx, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &DriveHost{srv: srv, folderID: cfg.DriveFolderID}, nil
}

// Upload creates the file under the folder, grants anyone read access and
// returns the view URL keyed by the file id.
func (h *DriveHost) Upload(ctx context.Context, media Media) (string, error) {
	meta := &drive.File{
		Name:     media.Name,
		MimeType: media.MIMEType,
		Parents:  []string{h.folderID},
	}
	file, err := h.srv.Files.Create(meta).
		Media(bytes.NewReader(media.Data), googleapi.ContentType(media.MIMEType)).
		SupportsAllDrives(true).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("create drive file: %w", err)
	}

	perm := &drive.Permission{Type: "anyone", Role: "reader"}
	if _, err := h.srv.Permissions.Create(file.Id, perm).SupportsAllDrives(true).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("share drive file %s: %w", file.Id, err)
	}
	return fmt.Sprintf(DriveViewURL, file.Id), nil
}
