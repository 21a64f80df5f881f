package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServiceRequestService(t *testing.T, rm *fakeRepoManager) *ServiceRequestService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	return NewServiceRequestService(db, rm)
}

func TestServiceRequest_Create(t *testing.T) {
	rm := newFakeRepoManager()
	s := newServiceRequestService(t, rm)

	req, err := s.Create(context.Background(), "u-1", "Penetration Testing", "External perimeter", "")
	require.NoError(t, err)

	assert.Equal(t, "req-1", req.ID)
	assert.Equal(t, models.PriorityMedium, rm.r.createIn.Priority)
	assert.Equal(t, models.RequestPending, rm.r.createIn.Status)
	assert.Equal(t, "u-1", rm.r.createIn.UserID)
}

func TestServiceRequest_CreateInvalid(t *testing.T) {
	tests := []struct {
		name, service, description, priority string
	}{
		{name: "missing service", description: "d"},
		{name: "missing description", service: "s"},
		{name: "blank description", service: "s", description: "   "},
		{name: "bad priority", service: "s", description: "d", priority: "urgent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm := newFakeRepoManager()
			_, err := newServiceRequestService(t, rm).Create(context.Background(), "u", tt.service, tt.description, tt.priority)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
			assert.Nil(t, rm.r.createIn)
		})
	}
}

func TestServiceRequest_Stats(t *testing.T) {
	rm := newFakeRepoManager()
	rm.r.countOut = map[string]int{
		models.RequestPending:    2,
		models.RequestInProgress: 1,
		models.RequestCompleted:  4,
	}

	stats, err := newServiceRequestService(t, rm).Stats(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStats{TotalRequests: 7, ActiveServices: 1, CompletedServices: 4, PendingServices: 2}, *stats)
}

func TestServiceRequest_StatsEmpty(t *testing.T) {
	rm := newFakeRepoManager()
	rm.r.countOut = map[string]int{}

	stats, err := newServiceRequestService(t, rm).Stats(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStats{}, *stats)
}

func TestServiceRequest_Dashboard(t *testing.T) {
	rm := newFakeRepoManager()
	rm.r.countOut = map[string]int{models.RequestPending: 1}
	rm.sc.summaryOut = &models.ScanSummary{TotalScans: 3, LastScanAt: &fixedNow}

	d, err := newServiceRequestService(t, rm).Dashboard(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, 1, d.TotalRequests)
	assert.Equal(t, 3, d.TotalScans)
	assert.Equal(t, &fixedNow, d.LastScanAt)

	rm.sc.summaryErr = errors.New("db error: x")
	_, err = newServiceRequestService(t, rm).Dashboard(context.Background(), "u")
	assert.Error(t, err)
}

func TestServiceRequest_List(t *testing.T) {
	rm := newFakeRepoManager()
	rm.r.listOut = []models.ServiceRequest{{ID: "b"}, {ID: "a"}}

	got, err := newServiceRequestService(t, rm).List(context.Background(), "u")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	rm.r.listErr = errors.New("db error: x")
	_, err = newServiceRequestService(t, rm).List(context.Background(), "u")
	assert.Error(t, err)
}
