package service_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/libris-api/internal/models"
	"github.com/noah-isme/libris-api/internal/repository"
	"github.com/noah-isme/libris-api/internal/service"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

type storageStub struct {
	uploads int
	deleted []string
	err     error
}

func (s *storageStub) Upload(_ context.Context, name string, _ io.Reader) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	s.uploads++
	return "blobs/" + name, "https://cdn.example.com/" + name, nil
}

func (s *storageStub) Delete(_ context.Context, fileID string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, fileID)
	return nil
}

func newUploadService(t *testing.T) (service.UploadService, *storageStub, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UploadRecord{}))

	storage := &storageStub{}
	svc := service.NewUploadService(storage, repository.NewUploadRepository(db), 1, zerolog.New(io.Discard))
	return svc, storage, db
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["file"][0]
}

func TestUploadStoresImageAndRecord(t *testing.T) {
	svc, storage, db := newUploadService(t)

	userID := uint(4)
	response, err := svc.Upload(context.Background(), fileHeader(t, "Cover Art.PNG", pngHeader), &userID)
	require.NoError(t, err)

	require.Equal(t, 1, storage.uploads)
	require.Equal(t, "cover-art.png", response.FileName)
	require.Equal(t, "image", response.MimeType)
	require.NotEmpty(t, response.Checksum)
	require.NotEmpty(t, response.URL)

	var record models.UploadRecord
	require.NoError(t, db.First(&record).Error)
	require.Equal(t, response.FileID, record.FileID)
	require.NotNil(t, record.UserID)
	require.Equal(t, userID, *record.UserID)
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	svc, storage, _ := newUploadService(t)

	_, err := svc.Upload(context.Background(), fileHeader(t, "notes.txt", []byte("plain text body")), nil)
	require.ErrorIs(t, err, service.ErrUploadTypeNotAllowed)
	require.Zero(t, storage.uploads)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc, storage, _ := newUploadService(t)

	oversized := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 1024*1024)...)
	_, err := svc.Upload(context.Background(), fileHeader(t, "big.png", oversized), nil)
	require.ErrorIs(t, err, service.ErrUploadTooLarge)
	require.Zero(t, storage.uploads)
}

func TestRemoveDeletesBlobAndRecord(t *testing.T) {
	svc, storage, db := newUploadService(t)

	response, err := svc.Upload(context.Background(), fileHeader(t, "cover.png", pngHeader), nil)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), response.FileID))
	require.Equal(t, []string{response.FileID}, storage.deleted)

	var count int64
	require.NoError(t, db.Model(&models.UploadRecord{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestRemoveIgnoresBlankID(t *testing.T) {
	svc, storage, _ := newUploadService(t)

	require.NoError(t, svc.Remove(context.Background(), "  "))
	require.Empty(t, storage.deleted)
}
