package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
)

type mockDocumentRepo struct {
	documents    map[string]*models.DocumentDetail
	codeTaken    bool
	inUse        []string
	lastChecked  []string
	lastKeepIDs  []string
	lastVersions []models.DocumentVersion
	deleted      []string
}

func newMockDocumentRepo() *mockDocumentRepo {
	return &mockDocumentRepo{documents: map[string]*models.DocumentDetail{}}
}

func (m *mockDocumentRepo) List(ctx context.Context, filter models.DocumentFilter) ([]models.DocumentDetail, int, error) {
	return nil, 0, nil
}

func (m *mockDocumentRepo) FindByID(ctx context.Context, id string) (*models.DocumentDetail, error) {
	detail, ok := m.documents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return detail, nil
}

func (m *mockDocumentRepo) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	return m.codeTaken, nil
}

func (m *mockDocumentRepo) VersionIDsInUse(ctx context.Context, versionIDs []string) ([]string, error) {
	m.lastChecked = versionIDs
	var hits []string
	for _, id := range versionIDs {
		for _, used := range m.inUse {
			if id == used {
				hits = append(hits, id)
			}
		}
	}
	return hits, nil
}

func (m *mockDocumentRepo) Create(ctx context.Context, document *models.Document, versions []models.DocumentVersion) error {
	document.ID = "d1"
	m.lastVersions = versions
	m.documents[document.ID] = &models.DocumentDetail{Document: *document, Versions: versions}
	return nil
}

func (m *mockDocumentRepo) Update(ctx context.Context, document *models.Document, keepIDs []string, newVersions []models.DocumentVersion) error {
	m.lastKeepIDs = keepIDs
	m.lastVersions = newVersions
	m.documents[document.ID] = &models.DocumentDetail{Document: *document}
	return nil
}

func (m *mockDocumentRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.documents, id)
	return nil
}

func TestDocumentServiceCreate(t *testing.T) {
	repo := newMockDocumentRepo()
	svc := NewDocumentService(repo, NewValidator(), zap.NewNop())

	detail, err := svc.Create(context.Background(), DocumentRequest{
		Code:     "PGR",
		Name:     "Programa de Gerenciamento de Riscos",
		Versions: []DocumentVersionRequest{{Label: "2026"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "d1", detail.ID)
	require.Len(t, repo.lastVersions, 1)
	assert.Equal(t, "2026", repo.lastVersions[0].Label)
}

func TestDocumentServiceCreateDuplicateCode(t *testing.T) {
	repo := newMockDocumentRepo()
	repo.codeTaken = true
	svc := NewDocumentService(repo, NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), DocumentRequest{Code: "PGR", Name: "PGR"})
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "is already taken", v.Fields["code"])
}

func TestDocumentServiceUpdatePrunedVersionInUse(t *testing.T) {
	repo := newMockDocumentRepo()
	repo.documents["d1"] = &models.DocumentDetail{
		Document: models.Document{ID: "d1", Code: "PGR", Name: "PGR"},
		Versions: []models.DocumentVersion{{ID: "v1"}, {ID: "v2"}},
	}
	repo.inUse = []string{"v2"}
	svc := NewDocumentService(repo, NewValidator(), zap.NewNop())

	_, err := svc.Update(context.Background(), "d1", DocumentRequest{
		Code:     "PGR",
		Name:     "PGR",
		Versions: []DocumentVersionRequest{{ID: "v1"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Equal(t, []string{"v2"}, repo.lastChecked)
}

func TestDocumentServiceUpdateKeepsReferencedVersions(t *testing.T) {
	repo := newMockDocumentRepo()
	repo.documents["d1"] = &models.DocumentDetail{
		Document: models.Document{ID: "d1", Code: "PGR", Name: "PGR"},
		Versions: []models.DocumentVersion{{ID: "v1"}},
	}
	svc := NewDocumentService(repo, NewValidator(), zap.NewNop())

	_, err := svc.Update(context.Background(), "d1", DocumentRequest{
		Code:     "PGR",
		Name:     "PGR atualizado",
		Versions: []DocumentVersionRequest{{ID: "v1"}, {Label: "2027"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, repo.lastKeepIDs)
	require.Len(t, repo.lastVersions, 1)
	assert.Equal(t, "2027", repo.lastVersions[0].Label)
}

func TestDocumentServiceDeleteInUse(t *testing.T) {
	repo := newMockDocumentRepo()
	repo.documents["d1"] = &models.DocumentDetail{
		Document: models.Document{ID: "d1", Code: "PGR", Name: "PGR"},
		Versions: []models.DocumentVersion{{ID: "v1"}},
	}
	repo.inUse = []string{"v1"}
	svc := NewDocumentService(repo, NewValidator(), zap.NewNop())

	err := svc.Delete(context.Background(), "d1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestDocumentServiceDeleteAbsent(t *testing.T) {
	repo := newMockDocumentRepo()
	svc := NewDocumentService(repo, NewValidator(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "ghost"))
	assert.Empty(t, repo.deleted)
}
