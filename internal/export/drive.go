package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/jchen-labs/media-summary/internal/models"
)

// DriveUploader publishes summary reports to a Google Drive folder,
// nested by date: <folder>/<year>/<month>/<day>/.
type DriveUploader struct {
	service    *drive.Service
	folderName string
	folderID   string
}

// NewDriveUploader builds an authenticated uploader. The OAuth token
// must already exist in tokenFile; interactive consent flows do not
// belong in a pipeline worker.
func NewDriveUploader(ctx context.Context, credentialsFile, tokenFile, folderName string) (*DriveUploader, error) {
	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read drive credentials: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(creds, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("parse drive credentials: %w", err)
	}

	client, err := clientFromToken(ctx, oauthCfg, tokenFile)
	if err != nil {
		return nil, err
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	u := &DriveUploader{service: srv, folderName: folderName}
	if err := u.ensureRootFolder(); err != nil {
		return nil, err
	}
	return u, nil
}

func clientFromToken(ctx context.Context, cfg *oauth2.Config, tokenFile string) (*http.Client, error) {
	f, err := os.Open(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read drive token: %w", err)
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("parse drive token: %w", err)
	}
	return cfg.Client(ctx, tok), nil
}

func (u *DriveUploader) ensureRootFolder() error {
	id, err := u.findOrCreateFolder(u.folderName, "")
	if err != nil {
		return fmt.Errorf("prepare drive folder %q: %w", u.folderName, err)
	}
	u.folderID = id
	return nil
}

// Upload publishes the markdown report and a metadata JSON for a
// completed job and returns the shareable link of the report.
func (u *DriveUploader) Upload(rec *models.PipelineResult) (string, error) {
	now := time.Now()
	folderID, err := u.ensureDateFolder(now)
	if err != nil {
		return "", err
	}

	baseName := fmt.Sprintf("%s_%s", now.Format("20060102_150405"), rec.JobID)

	report := &drive.File{
		Name:    baseName + "_summary.md",
		Parents: []string{folderID},
	}
	created, err := u.service.Files.Create(report).
		Media(bytes.NewReader([]byte(BuildMarkdown(rec)))).Do()
	if err != nil {
		return "", fmt.Errorf("upload summary report: %w", err)
	}

	meta := map[string]interface{}{
		"job_id":              rec.JobID,
		"entry_point":         rec.EntryPoint,
		"status":              rec.Status,
		"credits_consumed":    rec.CreditsConsumed,
		"processing_duration": rec.ProcessingDuration,
		"completed_at":        rec.CompletedAt,
	}
	if rec.Summary != nil {
		meta["word_count"] = rec.Summary.WordCount
		meta["model"] = rec.Summary.Model
	}
	metaJSON, _ := json.MarshalIndent(meta, "", "  ")

	metaFile := &drive.File{
		Name:    baseName + "_meta.json",
		Parents: []string{folderID},
	}
	if _, err := u.service.Files.Create(metaFile).Media(bytes.NewReader(metaJSON)).Do(); err != nil {
		return "", fmt.Errorf("upload job metadata: %w", err)
	}

	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", created.Id), nil
}

func (u *DriveUploader) ensureDateFolder(t time.Time) (string, error) {
	yearID, err := u.findOrCreateFolder(fmt.Sprintf("%d", t.Year()), u.folderID)
	if err != nil {
		return "", err
	}
	monthID, err := u.findOrCreateFolder(fmt.Sprintf("%02d", t.Month()), yearID)
	if err != nil {
		return "", err
	}
	return u.findOrCreateFolder(fmt.Sprintf("%02d", t.Day()), monthID)
}

func (u *DriveUploader) findOrCreateFolder(name, parentID string) (string, error) {
	query := fmt.Sprintf("name='%s' and mimeType='application/vnd.google-apps.folder' and trashed=false", name)
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", parentID)
	}

	r, err := u.service.Files.List().Q(query).Spaces("drive").Fields("files(id)").Do()
	if err != nil {
		return "", fmt.Errorf("search drive folder: %w", err)
	}
	if len(r.Files) > 0 {
		return r.Files[0].Id, nil
	}

	folder := &drive.File{
		Name:     name,
		MimeType: "application/vnd.google-apps.folder",
	}
	if parentID != "" {
		folder.Parents = []string{parentID}
	}

	file, err := u.service.Files.Create(folder).Fields("id").Do()
	if err != nil {
		return "", fmt.Errorf("create drive folder: %w", err)
	}
	return file.Id, nil
}
