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

type mockCatalogRepo struct {
	entries   map[string]*models.CatalogEntry
	nameTaken bool
	deleted   []string
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{entries: map[string]*models.CatalogEntry{}}
}

func (m *mockCatalogRepo) List(ctx context.Context, def models.CatalogDefinition, filter models.ListQuery) ([]models.CatalogEntry, int, error) {
	return nil, 0, nil
}

func (m *mockCatalogRepo) FindByID(ctx context.Context, def models.CatalogDefinition, id string) (*models.CatalogEntry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return entry, nil
}

func (m *mockCatalogRepo) ExistsByName(ctx context.Context, def models.CatalogDefinition, name string, excludeID string) (bool, error) {
	return m.nameTaken, nil
}

func (m *mockCatalogRepo) Create(ctx context.Context, def models.CatalogDefinition, entry *models.CatalogEntry) error {
	entry.ID = "ct1"
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockCatalogRepo) Update(ctx context.Context, def models.CatalogDefinition, entry *models.CatalogEntry) error {
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockCatalogRepo) Delete(ctx context.Context, def models.CatalogDefinition, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.entries, id)
	return nil
}

func TestCatalogServiceResolve(t *testing.T) {
	svc := NewCatalogService(newMockCatalogRepo(), NewValidator(), zap.NewNop())

	def, err := svc.Resolve("sectors")
	require.NoError(t, err)
	assert.Equal(t, "sectors", def.Table)
}

func TestCatalogServiceResolveUnknownSlug(t *testing.T) {
	svc := NewCatalogService(newMockCatalogRepo(), NewValidator(), zap.NewNop())

	_, err := svc.Resolve("widgets")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCatalogServiceCreateTrimsName(t *testing.T) {
	repo := newMockCatalogRepo()
	svc := NewCatalogService(repo, NewValidator(), zap.NewNop())

	entry, err := svc.Create(context.Background(), sectorsDefForTest(), CatalogEntryRequest{Name: "  Produção  "})
	require.NoError(t, err)
	assert.Equal(t, "Produção", entry.Name)
}

func TestCatalogServiceCreateDuplicateName(t *testing.T) {
	repo := newMockCatalogRepo()
	repo.nameTaken = true
	svc := NewCatalogService(repo, NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), sectorsDefForTest(), CatalogEntryRequest{Name: "Produção"})
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "is already taken", v.Fields["name"])
}

func TestCatalogServiceCreateBlankName(t *testing.T) {
	svc := NewCatalogService(newMockCatalogRepo(), NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), sectorsDefForTest(), CatalogEntryRequest{Name: "   "})
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v.Fields, "name")
}

func TestCatalogServiceUpdateNotFound(t *testing.T) {
	svc := NewCatalogService(newMockCatalogRepo(), NewValidator(), zap.NewNop())

	_, err := svc.Update(context.Background(), sectorsDefForTest(), "ghost", CatalogEntryRequest{Name: "Produção"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCatalogServiceDeleteAbsent(t *testing.T) {
	repo := newMockCatalogRepo()
	svc := NewCatalogService(repo, NewValidator(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), sectorsDefForTest(), "ghost"))
	assert.Equal(t, []string{"ghost"}, repo.deleted)
}

func sectorsDefForTest() models.CatalogDefinition {
	def, _ := models.CatalogBySlug("sectors")
	return def
}
