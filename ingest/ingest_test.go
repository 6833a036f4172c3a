package ingest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutapp/forum/apperr"
	"github.com/sproutapp/forum/models"
)

type fakeBlobs struct {
	stored  []string
	deleted []string
	failOn  int // 1-based index of the Store call that fails, 0 = never
}

func (f *fakeBlobs) Store(ctx context.Context, folder, name string, r io.Reader, size int64, contentType string) (string, error) {
	if f.failOn > 0 && len(f.stored)+1 == f.failOn {
		return "", errors.New("storage unavailable")
	}
	url := "mem://" + folder + "/" + name
	f.stored = append(f.stored, url)
	return url, nil
}

func (f *fakeBlobs) Delete(ctx context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

func fileOf(name string, size int64) File {
	return File{
		Name: name,
		Size: size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte("payload"))), nil
		},
	}
}

func TestIngestEmptyBatch(t *testing.T) {
	ing := New(&fakeBlobs{}, 0)
	attachments, err := ing.Ingest(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, attachments)
}

func TestIngestRejectsUnsupportedType(t *testing.T) {
	blobs := &fakeBlobs{}
	ing := New(blobs, 0)

	_, err := ing.Ingest(context.Background(), []File{
		fileOf("photo.png", 100),
		fileOf("malware.exe", 100),
	})
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, 400, ae.Status)
	assert.Equal(t, 40031, ae.Code)
	// Validation happens before any byte reaches storage.
	assert.Empty(t, blobs.stored)
}

func TestIngestRejectsOversizedBatch(t *testing.T) {
	blobs := &fakeBlobs{}
	ing := New(blobs, 10*1024*1024)

	_, err := ing.Ingest(context.Background(), []File{
		fileOf("one.jpg", 6*1024*1024),
		fileOf("two.jpg", 6*1024*1024),
	})
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, 40032, ae.Code)
	assert.Empty(t, blobs.stored)
}

func TestIngestStoresValidBatch(t *testing.T) {
	blobs := &fakeBlobs{}
	ing := New(blobs, 0)

	attachments, err := ing.Ingest(context.Background(), []File{
		fileOf("leaf.JPG", 2048),
		fileOf("clip.webm", 4096),
	})
	require.NoError(t, err)
	require.Len(t, attachments, 2)

	assert.Equal(t, models.AttachmentImage, attachments[0].Type)
	assert.Equal(t, "leaf.JPG", attachments[0].Name)
	assert.Equal(t, int64(2048), attachments[0].SizeBytes)
	assert.Equal(t, models.AttachmentVideo, attachments[1].Type)

	for _, a := range attachments {
		assert.Contains(t, a.URL, "mem://forum/")
	}
	assert.Len(t, blobs.stored, 2)
	assert.Empty(t, blobs.deleted)
}

func TestIngestRollsBackOnMidBatchFailure(t *testing.T) {
	blobs := &fakeBlobs{failOn: 3}
	ing := New(blobs, 0)

	_, err := ing.Ingest(context.Background(), []File{
		fileOf("a.png", 100),
		fileOf("b.png", 100),
		fileOf("c.png", 100),
	})
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, 50030, ae.Code)

	// The two blobs written before the failure are cleaned up.
	require.Len(t, blobs.stored, 2)
	assert.ElementsMatch(t, blobs.stored, blobs.deleted)
}
