package db

import (
	"context"

	"github.com/citydev/fleetcheck/internal/models"
)

// RecordService defines the remote record service consumed by the inspection
// wizard. The create-or-get operations are idempotent lookups by natural key
// (driver by driver_id, vehicle by name+plate, supervisor by email) with an
// insert when absent. Every call can fail independently; callers catch and
// fall back rather than retry.
type RecordService interface {
	CreateOrGetDriver(ctx context.Context, name, driverID string) (string, error)
	CreateOrGetVehicle(ctx context.Context, vehicle models.VehicleSelection) (string, error)
	CreateOrGetSupervisor(ctx context.Context, supervisor models.Supervisor) (string, error)
	SaveInspection(ctx context.Context, inspection models.Inspection) (string, error)

	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
	ListSupervisors(ctx context.Context) ([]models.SupervisorRecord, error)
	ListInspections(ctx context.Context, limit int64) ([]models.Inspection, error)

	InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error)
	InsertSupervisor(ctx context.Context, supervisor models.SupervisorRecord) (string, error)
}
