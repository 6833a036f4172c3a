// Package ingest validates and persists batches of uploaded files against the
// attachment policy. The policy is validate first, then commit: no byte
// reaches the blob store until the whole batch has passed the extension
// allow-list and the aggregate size budget.
package ingest

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sproutapp/forum/apperr"
	"github.com/sproutapp/forum/models"
	"github.com/sproutapp/forum/storage"
)

// MaxTotalBytes is the aggregate size budget for one attachment batch.
const MaxTotalBytes = 25 * 1024 * 1024

var allowedExts = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"mp4": true, "mov": true, "avi": true, "webm": true,
}

var videoExts = map[string]bool{
	"mp4": true, "mov": true, "avi": true, "webm": true,
}

// File is one uploaded file pending ingestion.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FromMultipart adapts a parsed multipart file header.
func FromMultipart(fh *multipart.FileHeader) File {
	return File{
		Name: filepath.Base(fh.Filename),
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// Ingestor persists validated attachment batches through a BlobStore.
type Ingestor struct {
	blobs    storage.BlobStore
	folder   string
	maxTotal int64
}

// New creates an Ingestor. maxTotal <= 0 falls back to MaxTotalBytes.
func New(blobs storage.BlobStore, maxTotal int64) *Ingestor {
	if maxTotal <= 0 {
		maxTotal = MaxTotalBytes
	}
	return &Ingestor{blobs: blobs, folder: "forum", maxTotal: maxTotal}
}

// Ingest validates the whole batch, then stores each file once. Any
// validation failure rejects the entire batch before storage; a storage
// failure mid-batch deletes the blobs already written and fails the batch.
func (ing *Ingestor) Ingest(ctx context.Context, files []File) ([]models.Attachment, error) {
	if len(files) == 0 {
		return nil, nil
	}

	var total int64
	exts := make([]string, len(files))
	for i, f := range files {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
		if !allowedExts[ext] {
			return nil, apperr.Validation(40031, fmt.Sprintf("file type .%s is not supported", ext))
		}
		exts[i] = ext
		total += f.Size
		if total > ing.maxTotal {
			return nil, apperr.Validation(40032, fmt.Sprintf("total attachment size exceeds %d MB limit", ing.maxTotal/(1024*1024)))
		}
	}

	attachments := make([]models.Attachment, 0, len(files))
	for i, f := range files {
		url, err := ing.storeOne(ctx, f, exts[i])
		if err != nil {
			ing.Discard(ctx, attachments)
			return nil, apperr.Internal(50030, "failed to store attachment")
		}
		attachments = append(attachments, models.Attachment{
			Type:      kindFor(exts[i]),
			URL:       url,
			Name:      f.Name,
			SizeBytes: f.Size,
		})
	}
	return attachments, nil
}

// Discard deletes the blobs behind the given attachments, best-effort. Used
// to roll back a batch whose later writes (blob or database) failed.
func (ing *Ingestor) Discard(ctx context.Context, attachments []models.Attachment) {
	for _, a := range attachments {
		_ = ing.blobs.Delete(ctx, a.URL)
	}
}

func (ing *Ingestor) storeOne(ctx context.Context, f File, ext string) (string, error) {
	src, err := f.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// Unique object name keeps the shared blob namespace conflict-free.
	objName := uuid.NewString() + "." + ext
	contentType := mime.TypeByExtension("." + ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return ing.blobs.Store(ctx, ing.folder, objName, src, f.Size, contentType)
}

func kindFor(ext string) models.AttachmentType {
	if videoExts[ext] {
		return models.AttachmentVideo
	}
	return models.AttachmentImage
}
