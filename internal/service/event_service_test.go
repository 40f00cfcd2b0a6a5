package service

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
)

type mockEventRepo struct {
	events       map[string]*models.EventDetail
	participants map[string]*models.EventParticipantDetail
	lastRoster   []models.EventParticipant
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{
		events:       map[string]*models.EventDetail{},
		participants: map[string]*models.EventParticipantDetail{},
	}
}

func (m *mockEventRepo) List(ctx context.Context, filter models.EventFilter) ([]models.EventDetail, int, error) {
	return nil, 0, nil
}

func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*models.EventDetail, error) {
	detail, ok := m.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return detail, nil
}

func (m *mockEventRepo) ParticipantsByEvent(ctx context.Context, eventID string) ([]models.EventParticipantDetail, error) {
	return nil, nil
}

func (m *mockEventRepo) FindParticipant(ctx context.Context, eventID, participantID string) (*models.EventParticipantDetail, error) {
	detail, ok := m.participants[participantID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return detail, nil
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event, participants []models.EventParticipant) error {
	m.lastRoster = participants
	m.events[event.ID] = &models.EventDetail{Event: *event}
	return nil
}

func (m *mockEventRepo) Update(ctx context.Context, event *models.Event, participants []models.EventParticipant) error {
	m.lastRoster = participants
	m.events[event.ID] = &models.EventDetail{Event: *event}
	return nil
}

func (m *mockEventRepo) Delete(ctx context.Context, id string) error {
	delete(m.events, id)
	return nil
}

func eventRequest(participants ...ParticipantRequest) EventRequest {
	starts := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	return EventRequest{
		Name:         "Treinamento NR-35",
		StartsAt:     starts,
		EndsAt:       starts.Add(8 * time.Hour),
		Location:     "Sede",
		Participants: participants,
	}
}

func TestEventServiceCreateFillsCertificateNumbers(t *testing.T) {
	repo := newMockEventRepo()
	svc := NewEventService(repo, nil, NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), eventRequest(
		ParticipantRequest{EmployeeID: "e1"},
		ParticipantRequest{EmployeeID: "e2"},
	))
	require.NoError(t, err)
	require.Len(t, repo.lastRoster, 2)
	first := repo.lastRoster[0].CertificateNumber
	second := repo.lastRoster[1].CertificateNumber
	assert.Len(t, first, 10)
	assert.Equal(t, strings.ToUpper(first), first)
	assert.NotEqual(t, first, second)

	// The same event and employee always yield the same number.
	assert.Equal(t, first, certificateNumber(repo.lastRoster[0].EventID, "e1"))
}

func TestEventServiceCreateKeepsProvidedNumbers(t *testing.T) {
	repo := newMockEventRepo()
	svc := NewEventService(repo, nil, NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), eventRequest(
		ParticipantRequest{EmployeeID: "e1", CertificateNumber: "CERT-001"},
		ParticipantRequest{EmployeeID: "e2"},
	))
	require.NoError(t, err)
	assert.Equal(t, "CERT-001", repo.lastRoster[0].CertificateNumber)
	assert.NotEmpty(t, repo.lastRoster[1].CertificateNumber)
}

func TestEventServiceCreateDuplicateEmployee(t *testing.T) {
	svc := NewEventService(newMockEventRepo(), nil, NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), eventRequest(
		ParticipantRequest{EmployeeID: "e1"},
		ParticipantRequest{EmployeeID: "e1"},
	))
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v.Fields, "participants.1.employee_id")
}

func TestEventServiceCreateDuplicateCertificateNumber(t *testing.T) {
	svc := NewEventService(newMockEventRepo(), nil, NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), eventRequest(
		ParticipantRequest{EmployeeID: "e1", CertificateNumber: "CERT-001"},
		ParticipantRequest{EmployeeID: "e2", CertificateNumber: "CERT-001"},
	))
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v.Fields, "participants.1.certificate_number")
}

func TestEventServiceCreateEndsBeforeStarts(t *testing.T) {
	svc := NewEventService(newMockEventRepo(), nil, NewValidator(), zap.NewNop())

	req := eventRequest()
	req.EndsAt = req.StartsAt.Add(-time.Hour)
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v.Fields, "ends_at")
}

func TestEventServiceCertificate(t *testing.T) {
	repo := newMockEventRepo()
	repo.events["ev1"] = &models.EventDetail{Event: models.Event{
		ID:       "ev1",
		Name:     "Treinamento NR-35",
		StartsAt: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC),
		Location: "Sede",
	}}
	repo.participants["p1"] = &models.EventParticipantDetail{
		EventParticipant: models.EventParticipant{ID: "p1", EventID: "ev1", EmployeeID: "e1", CertificateNumber: "ABCDE12345"},
		EmployeeName:     "Maria Silva",
	}
	svc := NewEventService(repo, nil, NewValidator(), zap.NewNop())

	data, filename, err := svc.Certificate(context.Background(), "ev1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "certificado-ABCDE12345.pdf", filename)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestEventServiceCertificateUnknownParticipant(t *testing.T) {
	repo := newMockEventRepo()
	repo.events["ev1"] = &models.EventDetail{Event: models.Event{ID: "ev1", Name: "X", StartsAt: time.Now(), EndsAt: time.Now().Add(time.Hour)}}
	svc := NewEventService(repo, nil, NewValidator(), zap.NewNop())

	_, _, err := svc.Certificate(context.Background(), "ev1", "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
