package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduworld-api/internal/models"
)

var (
	pdfHeader = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
	mp4Header = []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'i', 's', 'o', '2'}
)

type storageStub struct {
	uploaded  map[string][]byte
	deleted   []string
	failOn    string
	uploadErr error
}

func newStorageStub() *storageStub {
	return &storageStub{uploaded: map[string][]byte{}}
}

func (s *storageStub) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	payload, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	url := "/uploads/" + name
	s.uploaded[url] = payload
	return url, nil
}

func (s *storageStub) Delete(ctx context.Context, url string) error {
	if url == s.failOn {
		return errors.New("disk busy")
	}
	s.deleted = append(s.deleted, url)
	delete(s.uploaded, url)
	return nil
}

type uploadRepoStub struct {
	records []models.UploadRecord
	removed []string
}

func (u *uploadRepoStub) Create(ctx context.Context, record *models.UploadRecord) error {
	u.records = append(u.records, *record)
	return nil
}

func (u *uploadRepoStub) DeleteByURLs(ctx context.Context, urls []string) error {
	u.removed = append(u.removed, urls...)
	return nil
}

func TestMediaServiceRejectsSize(t *testing.T) {
	svc := NewMediaService(newStorageStub(), &uploadRepoStub{}, 1<<20, testLogger())

	file := buildFileHeader(t, "videos", "big.pdf", bytes.Repeat([]byte("a"), 2<<20))
	_, err := svc.Store(context.Background(), models.ResourceTypePDF, file, nil)
	require.ErrorIs(t, err, ErrUploadTooLarge)
}

func TestMediaServiceChecksKindAgainstContent(t *testing.T) {
	storage := newStorageStub()
	svc := NewMediaService(storage, &uploadRepoStub{}, 5<<20, testLogger())

	_, err := svc.Store(context.Background(), models.ResourceTypeVideo, buildFileHeader(t, "videos", "lesson.mp4", pdfHeader), nil)
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)

	_, err = svc.Store(context.Background(), models.ResourceTypePDF, buildFileHeader(t, "pdfs", "notes.pdf", []byte("plain text")), nil)
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)

	_, err = svc.Store(context.Background(), models.ResourceTypePDF, nil, nil)
	require.ErrorIs(t, err, ErrUploadMissing)
	require.Empty(t, storage.uploaded)
}

func TestMediaServiceStoresWithGeneratedName(t *testing.T) {
	storage := newStorageStub()
	repo := &uploadRepoStub{}
	svc := NewMediaService(storage, repo, 5<<20, testLogger())
	uploader := uint(3)

	resp, err := svc.Store(context.Background(), models.ResourceTypeVideo, buildFileHeader(t, "videos", "Lesson One.MP4", mp4Header), &uploader)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resp.URL, "/uploads/"))
	require.True(t, strings.HasSuffix(resp.FileName, ".mp4"))
	require.NotContains(t, resp.FileName, "Lesson")
	require.Equal(t, "video/mp4", resp.MimeType)
	require.Len(t, repo.records, 1)
	require.Equal(t, models.ResourceTypeVideo, repo.records[0].Kind)
	require.Equal(t, &uploader, repo.records[0].UploadedBy)

	pdf, err := svc.Store(context.Background(), models.ResourceTypePDF, buildFileHeader(t, "pdfs", "notes.pdf", pdfHeader), nil)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", pdf.MimeType)
	require.Len(t, storage.uploaded, 2)
}

func TestMediaServiceRemoveIsBestEffort(t *testing.T) {
	storage := newStorageStub()
	storage.failOn = "/uploads/b.pdf"
	repo := &uploadRepoStub{}
	svc := NewMediaService(storage, repo, 5<<20, testLogger())

	svc.Remove(context.Background(), []string{"/uploads/a.mp4", "/uploads/b.pdf", "/uploads/c.mp4", ""})
	require.Equal(t, []string{"/uploads/a.mp4", "/uploads/c.mp4"}, storage.deleted)
	require.Len(t, repo.removed, 4)
}

func buildFileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"" + field + "\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File[field]
	require.Len(t, files, 1)
	return files[0]
}
