package driveimpl

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/snapwatch/tiktok-monitor/internal/archiver"
	"github.com/snapwatch/tiktok-monitor/pkg/config"
	apperrors "github.com/snapwatch/tiktok-monitor/pkg/errors"
	"github.com/snapwatch/tiktok-monitor/pkg/logger"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type DriveImpl struct {
	svc      *drive.Service
	folderID string
	logger   logger.Logger
}

func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*DriveImpl, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsJSON([]byte(cfg.Google.CredentialsJSON)),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, apperrors.WrapWithCode(err, "DRIVE_INIT_FAILED", "failed to create drive service")
	}

	return &DriveImpl{
		svc:      svc,
		folderID: cfg.Google.DriveFolderID,
		logger:   log.WithComponent("DriveArchiver"),
	}, nil
}

var _ archiver.Client = (*DriveImpl)(nil)

// Archive uploads the file, grants anyone-with-link read access and returns
// the view link.
func (d *DriveImpl) Archive(ctx context.Context, localPath, displayName, description string) (string, error) {
	fh, err := os.Open(localPath)
	if err != nil {
		return "", apperrors.WrapClass(apperrors.ErrArchive, err, "failed to open media file")
	}
	defer fh.Close()

	meta := &drive.File{
		Name:        displayName,
		Description: description,
	}
	if d.folderID != "" {
		meta.Parents = []string{d.folderID}
	}

	d.logger.Info("Uploading media to Drive", "name", displayName)

	file, err := d.svc.Files.Create(meta).
		Context(ctx).
		Media(fh, googleapi.ContentType(mimeTypeOf(localPath))).
		SupportsAllDrives(true).
		Fields("id", "webViewLink", "webContentLink").
		Do()
	if err != nil {
		return "", apperrors.WrapClass(apperrors.ErrArchive, err, "failed to upload to drive")
	}

	_, err = d.svc.Permissions.Create(file.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).SupportsAllDrives(true).Do()
	if err != nil {
		return "", apperrors.WrapClass(apperrors.ErrArchive, err, "failed to share uploaded file")
	}

	link := file.WebViewLink
	if link == "" {
		link = file.WebContentLink
	}

	d.logger.Info("Uploaded media to Drive", "name", displayName, "url", link)
	return link, nil
}

func mimeTypeOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "video/mp4"
	}
}
