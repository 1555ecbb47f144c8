package services_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"floral_essence/internal/lib/filename"
	services "floral_essence/internal/services/media_service"
	"floral_essence/internal/storage"
	filestorage "floral_essence/internal/storage/filestorage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	pngHeader = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"
	jpegData  = "\xff\xd8\xff\xe0\x00\x10JFIF\x00"
)

type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) GetBaseDir() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockFileStorage) Save(ctx context.Context, file *multipart.FileHeader, name string) (int64, error) {
	args := m.Called(ctx, file, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFileStorage) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockFileStorage) Rename(ctx context.Context, oldName, newName string) error {
	args := m.Called(ctx, oldName, newName)
	return args.Error(0)
}

func (m *MockFileStorage) List(ctx context.Context) ([]filestorage.FileInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).([]filestorage.FileInfo), args.Error(1)
}

func (m *MockFileStorage) Exists(name string) (bool, error) {
	args := m.Called(name)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileStorage) GetFullPath(name string) string {
	args := m.Called(name)
	return args.String(0)
}

func (m *MockFileStorage) BaseURL() string {
	args := m.Called()
	return args.String(0)
}

func createTestFile(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", name)
	require.NoError(t, err)

	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	err = writer.Close()
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	file, header, err := req.FormFile("image")
	require.NoError(t, err)
	file.Close()

	return header
}

// sequence returns suffixes 000001, 000002, ...
func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%06d", n)
	}
}

func newService(fs *MockFileStorage) *services.MediaService {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
	return services.NewMediaService(log, fs, filename.NewWithSuffix(sequence()), 1024, 3)
}

const base = "http://localhost:3001/uploads"

func TestMediaService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		fs := new(MockFileStorage)
		file := createTestFile(t, "Hoa Hồng Đỏ.PNG", pngHeader)
		fs.On("Save", ctx, file, "hoa-hong-do-000001.png").Return(int64(len(pngHeader)), nil)

		res, err := newService(fs).Upload(ctx, base, file)
		require.NoError(t, err)

		assert.Equal(t, "hoa-hong-do-000001.png", res.Filename)
		assert.Equal(t, base+"/hoa-hong-do-000001.png", res.URL)
		assert.Equal(t, "Hoa Hồng Đỏ.PNG", res.OriginalName)
		assert.Equal(t, int64(len(pngHeader)), res.Size)
		fs.AssertExpectations(t)
	})

	t.Run("retries taken names", func(t *testing.T) {
		fs := new(MockFileStorage)
		file := createTestFile(t, "a.jpg", jpegData)
		fs.On("Save", ctx, file, "a-000001.jpg").Return(int64(0), storage.ErrFileExists)
		fs.On("Save", ctx, file, "a-000002.jpg").Return(int64(len(jpegData)), nil)

		res, err := newService(fs).Upload(ctx, base, file)
		require.NoError(t, err)
		assert.Equal(t, "a-000002.jpg", res.Filename)
	})

	t.Run("too large", func(t *testing.T) {
		fs := new(MockFileStorage)
		file := createTestFile(t, "big.png", pngHeader+string(make([]byte, 2048)))

		_, err := newService(fs).Upload(ctx, base, file)
		assert.ErrorIs(t, err, storage.ErrFileTooLarge)
		fs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong extension", func(t *testing.T) {
		fs := new(MockFileStorage)
		file := createTestFile(t, "doc.pdf", pngHeader)

		_, err := newService(fs).Upload(ctx, base, file)
		assert.ErrorIs(t, err, storage.ErrInvalidFileType)
	})

	t.Run("content is not an image", func(t *testing.T) {
		fs := new(MockFileStorage)
		file := createTestFile(t, "fake.jpg", "<html><body>hi</body></html>")

		_, err := newService(fs).Upload(ctx, base, file)
		assert.ErrorIs(t, err, storage.ErrInvalidFileType)
	})
}

func TestMediaService_UploadMany(t *testing.T) {
	ctx := context.Background()

	t.Run("all or nothing on validation", func(t *testing.T) {
		fs := new(MockFileStorage)
		files := []*multipart.FileHeader{
			createTestFile(t, "a.png", pngHeader),
			createTestFile(t, "b.txt", "text"),
		}

		_, err := newService(fs).UploadMany(ctx, base, files)
		assert.ErrorIs(t, err, storage.ErrInvalidFileType)
		fs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rolls back saved files", func(t *testing.T) {
		fs := new(MockFileStorage)
		a := createTestFile(t, "a.png", pngHeader)
		b := createTestFile(t, "b.png", pngHeader)
		fs.On("Save", ctx, a, "a-000001.png").Return(int64(10), nil)
		fs.On("Save", ctx, b, "b-000002.png").Return(int64(0), errors.New("disk full"))
		fs.On("Delete", ctx, "a-000001.png").Return(nil)

		_, err := newService(fs).UploadMany(ctx, base, []*multipart.FileHeader{a, b})
		assert.Error(t, err)
		fs.AssertCalled(t, "Delete", ctx, "a-000001.png")
	})

	t.Run("limits", func(t *testing.T) {
		fs := new(MockFileStorage)
		svc := newService(fs)

		_, err := svc.UploadMany(ctx, base, nil)
		assert.ErrorIs(t, err, services.ErrNoFiles)

		files := make([]*multipart.FileHeader, 4)
		for i := range files {
			files[i] = createTestFile(t, "x.png", pngHeader)
		}
		_, err = svc.UploadMany(ctx, base, files)
		assert.ErrorIs(t, err, services.ErrTooManyFiles)
	})

	t.Run("success", func(t *testing.T) {
		fs := new(MockFileStorage)
		a := createTestFile(t, "a.png", pngHeader)
		b := createTestFile(t, "b.gif", "GIF89a\x01\x00\x01\x00")
		fs.On("Save", ctx, mock.Anything, mock.Anything).Return(int64(10), nil)

		res, err := newService(fs).UploadMany(ctx, base, []*multipart.FileHeader{a, b})
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, "b-000002.gif", res[1].Filename)
	})
}

func TestMediaService_Delete(t *testing.T) {
	ctx := context.Background()

	fs := new(MockFileStorage)
	fs.On("Delete", ctx, "here.jpg").Return(nil)
	fs.On("Delete", ctx, "gone.jpg").Return(storage.ErrFileNotFound)
	fs.On("Delete", ctx, "../etc/passwd").Return(storage.ErrPathEscape)
	svc := newService(fs)

	assert.NoError(t, svc.Delete(ctx, "here.jpg"))
	assert.NoError(t, svc.Delete(ctx, "gone.jpg"), "отсутствующий файл считается удаленным")
	assert.ErrorIs(t, svc.Delete(ctx, "../etc/passwd"), storage.ErrPathEscape)
}

func TestMediaService_Rename(t *testing.T) {
	ctx := context.Background()

	t.Run("seo name keeps extension", func(t *testing.T) {
		fs := new(MockFileStorage)
		fs.On("Rename", ctx, "img-123456.jpg", "hoa-hong-000001.jpg").Return(nil)

		res, err := newService(fs).Rename(ctx, base, "img-123456.jpg", "Hoa Hồng")
		require.NoError(t, err)
		assert.Regexp(t, `^[a-z0-9-]+\.jpg$`, res.NewFilename)
		assert.Equal(t, "hoa-hong-000001.jpg", res.NewFilename)
		assert.Equal(t, base+"/hoa-hong-000001.jpg", res.NewURL)
		assert.Equal(t, "img-123456.jpg", res.OldFilename)
	})

	t.Run("empty name", func(t *testing.T) {
		fs := new(MockFileStorage)
		svc := newService(fs)

		_, err := svc.Rename(ctx, base, "a.jpg", "   ")
		assert.ErrorIs(t, err, services.ErrEmptyFilename)

		_, err = svc.Rename(ctx, base, "a.jpg", "!!!")
		assert.ErrorIs(t, err, services.ErrEmptyFilename)
		fs.AssertNotCalled(t, "Rename", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage errors pass through", func(t *testing.T) {
		fs := new(MockFileStorage)
		fs.On("Rename", ctx, "missing.jpg", mock.Anything).Return(storage.ErrFileNotFound)

		_, err := newService(fs).Rename(ctx, base, "missing.jpg", "new")
		assert.ErrorIs(t, err, storage.ErrFileNotFound)
	})
}

func TestMediaService_List(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	fs := new(MockFileStorage)
	fs.On("List", ctx).Return([]filestorage.FileInfo{
		{Name: "hoa-hong-1.jpg", Size: 10, ModTime: now},
		{Name: "gau-bong-2.png", Size: 20, ModTime: now.Add(-time.Hour)},
	}, nil)
	svc := newService(fs)

	all, err := svc.List(ctx, base+"/", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, base+"/hoa-hong-1.jpg", all[0].URL)
	assert.Equal(t, int64(20), all[1].Size)

	filtered, err := svc.List(ctx, base, "HOA")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "hoa-hong-1.jpg", filtered[0].Filename)
}
