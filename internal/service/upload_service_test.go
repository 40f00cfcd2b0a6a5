package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
	"github.com/hseworks/sst-backoffice-api/pkg/storage"
)

type mockUploadRepo struct {
	uploads    map[string]*models.Upload
	lastStatus models.UploadStatus
	deleted    []string
}

func newMockUploadRepo() *mockUploadRepo {
	return &mockUploadRepo{uploads: map[string]*models.Upload{}}
}

func (m *mockUploadRepo) List(ctx context.Context, filter models.UploadFilter) ([]models.Upload, int, error) {
	return nil, 0, nil
}

func (m *mockUploadRepo) FindByID(ctx context.Context, id string) (*models.Upload, error) {
	upload, ok := m.uploads[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *upload
	return &clone, nil
}

func (m *mockUploadRepo) BySubject(ctx context.Context, subjectType models.UploadSubject, subjectID string) ([]models.Upload, error) {
	return nil, nil
}

func (m *mockUploadRepo) Create(ctx context.Context, upload *models.Upload) error {
	m.uploads[upload.ID] = upload
	return nil
}

func (m *mockUploadRepo) Update(ctx context.Context, upload *models.Upload) error {
	m.uploads[upload.ID] = upload
	return nil
}

func (m *mockUploadRepo) UpdateStatus(ctx context.Context, id string, status models.UploadStatus) error {
	m.lastStatus = status
	if upload, ok := m.uploads[id]; ok {
		upload.Status = status
	}
	return nil
}

func (m *mockUploadRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.uploads, id)
	return nil
}

func testUploadService(t *testing.T, repo *mockUploadRepo) *UploadService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewViewTokenSigner("secret", time.Minute)
	return NewUploadService(repo, store, signer, nil, 1024, []string{"application/pdf"}, NewValidator(), zap.NewNop())
}

func pdfFile(content string) *UploadFile {
	return &UploadFile{
		Name:     "laudo.pdf",
		MimeType: "application/pdf",
		Size:     int64(len(content)),
		Reader:   strings.NewReader(content),
	}
}

func TestUploadServiceCreate(t *testing.T) {
	repo := newMockUploadRepo()
	svc := testUploadService(t, repo)

	detail, err := svc.Create(context.Background(), UploadRequest{
		SubjectType: models.SubjectEmployee,
		SubjectID:   "e1",
	}, pdfFile("%PDF-1.4 test"))
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusPending, detail.Status)
	assert.Contains(t, detail.FileURL, "/uploads/view/"+detail.ID+"?token=")
	assert.Len(t, repo.uploads, 1)

	upload, file, err := svc.OpenFile(context.Background(), detail.ID, "", true)
	require.NoError(t, err)
	defer file.Close()
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(data))
	assert.Equal(t, "laudo.pdf", upload.FileName)
}

func TestUploadServiceCreateRequiresFile(t *testing.T) {
	svc := testUploadService(t, newMockUploadRepo())

	_, err := svc.Create(context.Background(), UploadRequest{
		SubjectType: models.SubjectEmployee,
		SubjectID:   "e1",
	}, nil)
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "is required", v.Fields["file"])
}

func TestUploadServiceCreateOversizeFile(t *testing.T) {
	svc := testUploadService(t, newMockUploadRepo())

	file := pdfFile(strings.Repeat("x", 2048))
	_, err := svc.Create(context.Background(), UploadRequest{
		SubjectType: models.SubjectEmployee,
		SubjectID:   "e1",
	}, file)
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v.Fields, "file")
}

func TestUploadServiceCreateUnsupportedMime(t *testing.T) {
	svc := testUploadService(t, newMockUploadRepo())

	file := pdfFile("MZ")
	file.Name = "virus.exe"
	file.MimeType = "application/octet-stream"
	_, err := svc.Create(context.Background(), UploadRequest{
		SubjectType: models.SubjectEmployee,
		SubjectID:   "e1",
	}, file)
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "has an unsupported content type", v.Fields["file"])
}

func TestUploadServiceCreateInvalidSubjectType(t *testing.T) {
	svc := testUploadService(t, newMockUploadRepo())

	_, err := svc.Create(context.Background(), UploadRequest{
		SubjectType: "spaceship",
		SubjectID:   "e1",
	}, pdfFile("%PDF"))
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "is invalid", v.Fields["subject_type"])
}

func TestUploadServiceViewTokenFlow(t *testing.T) {
	repo := newMockUploadRepo()
	svc := testUploadService(t, repo)

	detail, err := svc.Create(context.Background(), UploadRequest{
		SubjectType: models.SubjectCompany,
		SubjectID:   "c1",
	}, pdfFile("%PDF"))
	require.NoError(t, err)

	token := detail.FileURL[strings.Index(detail.FileURL, "token=")+len("token="):]
	_, file, err := svc.OpenFile(context.Background(), detail.ID, token, false)
	require.NoError(t, err)
	file.Close()

	_, _, err = svc.OpenFile(context.Background(), detail.ID, "bogus", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestUploadServiceUpdateStatus(t *testing.T) {
	repo := newMockUploadRepo()
	svc := testUploadService(t, repo)

	detail, err := svc.Create(context.Background(), UploadRequest{
		SubjectType: models.SubjectEmployee,
		SubjectID:   "e1",
	}, pdfFile("%PDF"))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), detail.ID, models.UploadStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusApproved, updated.Status)
	assert.Equal(t, models.UploadStatusApproved, repo.lastStatus)

	_, err = svc.UpdateStatus(context.Background(), detail.ID, "meh")
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v.Fields, "status")
}

func TestUploadServiceDeleteAbsent(t *testing.T) {
	repo := newMockUploadRepo()
	svc := testUploadService(t, repo)

	require.NoError(t, svc.Delete(context.Background(), "ghost"))
	assert.Empty(t, repo.deleted)
}
