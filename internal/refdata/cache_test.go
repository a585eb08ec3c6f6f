package refdata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/citydev/fleetcheck/internal/draft"
	"github.com/citydev/fleetcheck/internal/models"
)

// MockRecordService is a mock implementation of db.RecordService
type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) CreateOrGetDriver(ctx context.Context, name, driverID string) (string, error) {
	args := m.Called(ctx, name, driverID)
	return args.String(0), args.Error(1)
}

func (m *MockRecordService) CreateOrGetVehicle(ctx context.Context, vehicle models.VehicleSelection) (string, error) {
	args := m.Called(ctx, vehicle)
	return args.String(0), args.Error(1)
}

func (m *MockRecordService) CreateOrGetSupervisor(ctx context.Context, supervisor models.Supervisor) (string, error) {
	args := m.Called(ctx, supervisor)
	return args.String(0), args.Error(1)
}

func (m *MockRecordService) SaveInspection(ctx context.Context, inspection models.Inspection) (string, error) {
	args := m.Called(ctx, inspection)
	return args.String(0), args.Error(1)
}

func (m *MockRecordService) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *MockRecordService) ListSupervisors(ctx context.Context) ([]models.SupervisorRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SupervisorRecord), args.Error(1)
}

func (m *MockRecordService) ListInspections(ctx context.Context, limit int64) ([]models.Inspection, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Inspection), args.Error(1)
}

func (m *MockRecordService) InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error) {
	args := m.Called(ctx, vehicle)
	return args.String(0), args.Error(1)
}

func (m *MockRecordService) InsertSupervisor(ctx context.Context, supervisor models.SupervisorRecord) (string, error) {
	args := m.Called(ctx, supervisor)
	return args.String(0), args.Error(1)
}

func TestCache_VehiclesRemoteWritesThrough(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordService)
	records.On("ListVehicles", mock.Anything).Return([]models.Vehicle{
		{Name: "Truck 7", Type: "Truck", PlateNumber: "ON-123", Department: "Public Works"},
	}, nil)
	drafts := draft.NewRecords(draft.NewMemoryStore())
	cache := NewCache(records, drafts, nil)

	vehicles, fromCache := cache.Vehicles(ctx)
	require.Len(t, vehicles, 1)
	assert.False(t, fromCache)
	assert.Equal(t, "Truck 7", vehicles[0].Name)
	assert.Equal(t, "ON-123", vehicles[0].PlateNumber)

	// Write-through: the cache now holds the remote list.
	cached := drafts.VehicleCache()
	require.Len(t, cached, 1)
	assert.Equal(t, "Truck 7", cached[0].Name)
}

func TestCache_VehiclesFallsBackToCache(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordService)
	records.On("ListVehicles", mock.Anything).Return(nil, errors.New("connection refused"))
	drafts := draft.NewRecords(draft.NewMemoryStore())
	require.NoError(t, drafts.SetVehicleCache([]models.VehicleSelection{
		{Name: "Van 2", PlateNumber: "ON-456"},
	}))
	cache := NewCache(records, drafts, nil)

	vehicles, fromCache := cache.Vehicles(ctx)
	assert.True(t, fromCache)
	require.Len(t, vehicles, 1)
	assert.Equal(t, "Van 2", vehicles[0].Name)
}

func TestCache_VehiclesEmptyWhenNothingCached(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordService)
	records.On("ListVehicles", mock.Anything).Return(nil, errors.New("down"))
	cache := NewCache(records, draft.NewRecords(draft.NewMemoryStore()), nil)

	vehicles, fromCache := cache.Vehicles(ctx)
	assert.True(t, fromCache)
	assert.Empty(t, vehicles)
}

func TestCache_SupervisorsRemoteWinsOverStaleCache(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordService)
	records.On("ListSupervisors", mock.Anything).Return([]models.SupervisorRecord{
		{Name: "Sam Lee", Email: "sam@example.com", Department: "Public Works"},
	}, nil)
	drafts := draft.NewRecords(draft.NewMemoryStore())
	require.NoError(t, drafts.SetSupervisorCache([]models.Supervisor{
		{Name: "Old Entry", Email: "old@example.com"},
	}))
	cache := NewCache(records, drafts, nil)

	supervisors, fromCache := cache.Supervisors(ctx)
	assert.False(t, fromCache)
	require.Len(t, supervisors, 1)
	assert.Equal(t, "sam@example.com", supervisors[0].Email)

	// The stale entry was replaced, not merged.
	cached := drafts.SupervisorCache()
	require.Len(t, cached, 1)
	assert.Equal(t, "sam@example.com", cached[0].Email)
}
