package service

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
)

type mockDeliveryRepo struct {
	deliveries map[string]*models.EpiDeliveryDetail
	lastItems  []models.EpiDeliveryItem
	deleted    []string
}

func newMockDeliveryRepo() *mockDeliveryRepo {
	return &mockDeliveryRepo{deliveries: map[string]*models.EpiDeliveryDetail{}}
}

func (m *mockDeliveryRepo) List(ctx context.Context, filter models.EpiDeliveryFilter) ([]models.EpiDeliveryDetail, int, error) {
	return nil, 0, nil
}

func (m *mockDeliveryRepo) FindByID(ctx context.Context, id string) (*models.EpiDeliveryDetail, error) {
	detail, ok := m.deliveries[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return detail, nil
}

func (m *mockDeliveryRepo) Create(ctx context.Context, delivery *models.EpiDelivery, items []models.EpiDeliveryItem) error {
	delivery.ID = "del1"
	m.lastItems = items
	m.deliveries[delivery.ID] = &models.EpiDeliveryDetail{EpiDelivery: *delivery}
	return nil
}

func (m *mockDeliveryRepo) Update(ctx context.Context, delivery *models.EpiDelivery, items []models.EpiDeliveryItem) error {
	m.lastItems = items
	m.deliveries[delivery.ID] = &models.EpiDeliveryDetail{EpiDelivery: *delivery}
	return nil
}

func (m *mockDeliveryRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.deliveries, id)
	return nil
}

func deliveryRequest(items ...DeliveryItemRequest) DeliveryRequest {
	return DeliveryRequest{
		EmployeeID:     "e1",
		TechnicianID:   "t1",
		DocumentNumber: "EPI-0001",
		DeliveredAt:    time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC),
		Items:          items,
	}
}

func TestDeliveryServiceCreate(t *testing.T) {
	repo := newMockDeliveryRepo()
	svc := NewDeliveryService(repo, nil, NewValidator(), zap.NewNop())

	detail, err := svc.Create(context.Background(), deliveryRequest(
		DeliveryItemRequest{EpiID: "epi1", Quantity: 2},
		DeliveryItemRequest{EpiID: "epi2", Quantity: 1, Notes: "troca"},
	))
	require.NoError(t, err)
	assert.Equal(t, "del1", detail.ID)
	require.Len(t, repo.lastItems, 2)
	assert.Equal(t, 2, repo.lastItems[0].Quantity)
	assert.Equal(t, "troca", repo.lastItems[1].Notes)
}

func TestDeliveryServiceCreateRequiresItems(t *testing.T) {
	svc := NewDeliveryService(newMockDeliveryRepo(), nil, NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), deliveryRequest())
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v.Fields, "items")
}

func TestDeliveryServiceCreateDuplicateItem(t *testing.T) {
	svc := NewDeliveryService(newMockDeliveryRepo(), nil, NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), deliveryRequest(
		DeliveryItemRequest{EpiID: "epi1", Quantity: 2},
		DeliveryItemRequest{EpiID: "epi1", Quantity: 1},
	))
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "is duplicated", v.Fields["items.1.epi_id"])
}

func TestDeliveryServiceCreateRejectsZeroQuantity(t *testing.T) {
	svc := NewDeliveryService(newMockDeliveryRepo(), nil, NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), deliveryRequest(
		DeliveryItemRequest{EpiID: "epi1", Quantity: 0},
	))
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v.Fields, "quantity")
}

func TestDeliveryServiceReceipt(t *testing.T) {
	repo := newMockDeliveryRepo()
	repo.deliveries["del1"] = &models.EpiDeliveryDetail{
		EpiDelivery: models.EpiDelivery{
			ID:             "del1",
			DocumentNumber: "EPI-0001",
			DeliveredAt:    time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC),
		},
		EmployeeName:   "Maria Silva",
		TechnicianName: "João Souza",
		Items: []models.EpiDeliveryItemDetail{
			{EpiDeliveryItem: models.EpiDeliveryItem{EpiID: "epi1", Quantity: 2}, EpiName: "Capacete", CANumber: "12345"},
		},
	}
	svc := NewDeliveryService(repo, nil, NewValidator(), zap.NewNop())

	data, filename, err := svc.Receipt(context.Background(), "del1")
	require.NoError(t, err)
	assert.Equal(t, "recibo-EPI-0001.pdf", filename)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestDeliveryServiceReceiptNotFound(t *testing.T) {
	svc := NewDeliveryService(newMockDeliveryRepo(), nil, NewValidator(), zap.NewNop())

	_, _, err := svc.Receipt(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDeliveryServiceDeleteAbsent(t *testing.T) {
	repo := newMockDeliveryRepo()
	svc := NewDeliveryService(repo, nil, NewValidator(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "ghost"))
	assert.Equal(t, []string{"ghost"}, repo.deleted)
}
