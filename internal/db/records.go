package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/citydev/fleetcheck/internal/models"
)

// MongoRecordService implements RecordService on MongoDB collections.
//
// The four submission calls (three create-or-get plus the inspection insert)
// are issued sequentially and are not wrapped in a transaction: a failure
// partway can leave driver/vehicle/supervisor rows with no inspection row.
// Those orphans are harmless, the next create-or-get reuses them.
type MongoRecordService struct {
	Drivers     *mongo.Collection
	Vehicles    *mongo.Collection
	Supervisors *mongo.Collection
	Inspections *mongo.Collection
}

// NewMongoRecordService wires the service onto the fleetcheck database.
func NewMongoRecordService(database *mongo.Database) *MongoRecordService {
	return &MongoRecordService{
		Drivers:     database.Collection("drivers"),
		Vehicles:    database.Collection("vehicles"),
		Supervisors: database.Collection("supervisors"),
		Inspections: database.Collection("inspections"),
	}
}

// CreateOrGetDriver looks a driver up by its natural driver_id key and
// inserts it when absent.
func (s *MongoRecordService) CreateOrGetDriver(ctx context.Context, name, driverID string) (string, error) {
	if s.Drivers == nil {
		return "", fmt.Errorf("drivers collection is nil")
	}

	var existing models.Driver
	err := s.Drivers.FindOne(ctx, bson.M{"driver_id": driverID}).Decode(&existing)
	if err == nil {
		return existing.ID.Hex(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("find driver %s: %w", driverID, err)
	}

	result, err := s.Drivers.InsertOne(ctx, models.Driver{
		Name:      name,
		DriverID:  driverID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("create driver %s: %w", driverID, err)
	}
	return insertedHex(result)
}

// CreateOrGetVehicle looks a vehicle up by (name, plate_number) and inserts
// it when absent. Name and plate are required.
func (s *MongoRecordService) CreateOrGetVehicle(ctx context.Context, vehicle models.VehicleSelection) (string, error) {
	if s.Vehicles == nil {
		return "", fmt.Errorf("vehicles collection is nil")
	}
	if !vehicle.Valid() {
		return "", errors.New("vehicle name and plate number are required")
	}

	var existing models.Vehicle
	err := s.Vehicles.FindOne(ctx, bson.M{"name": vehicle.Name, "plate_number": vehicle.PlateNumber}).Decode(&existing)
	if err == nil {
		return existing.ID.Hex(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("find vehicle %s/%s: %w", vehicle.Name, vehicle.PlateNumber, err)
	}

	row := models.Vehicle{
		Name:        vehicle.Name,
		Type:        vehicle.Type,
		PlateNumber: vehicle.PlateNumber,
		Department:  vehicle.Department,
		CreatedAt:   time.Now(),
	}
	if row.Type == "" {
		row.Type = "Unknown"
	}
	if row.Department == "" {
		row.Department = "Unknown"
	}
	result, err := s.Vehicles.InsertOne(ctx, row)
	if err != nil {
		return "", fmt.Errorf("create vehicle %s: %w", vehicle.Name, err)
	}
	return insertedHex(result)
}

// CreateOrGetSupervisor looks a supervisor up by email and inserts it when
// absent.
func (s *MongoRecordService) CreateOrGetSupervisor(ctx context.Context, supervisor models.Supervisor) (string, error) {
	if s.Supervisors == nil {
		return "", fmt.Errorf("supervisors collection is nil")
	}

	var existing models.SupervisorRecord
	err := s.Supervisors.FindOne(ctx, bson.M{"email": supervisor.Email}).Decode(&existing)
	if err == nil {
		return existing.ID.Hex(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("find supervisor %s: %w", supervisor.Email, err)
	}

	result, err := s.Supervisors.InsertOne(ctx, models.SupervisorRecord{
		Name:       supervisor.Name,
		Email:      supervisor.Email,
		Department: supervisor.Department,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("create supervisor %s: %w", supervisor.Email, err)
	}
	return insertedHex(result)
}

// SaveInspection inserts the composed inspection row.
func (s *MongoRecordService) SaveInspection(ctx context.Context, inspection models.Inspection) (string, error) {
	if s.Inspections == nil {
		return "", fmt.Errorf("inspections collection is nil")
	}
	inspection.CreatedAt = time.Now()
	result, err := s.Inspections.InsertOne(ctx, inspection)
	if err != nil {
		return "", fmt.Errorf("save inspection: %w", err)
	}
	return insertedHex(result)
}

// ListVehicles returns all fleet vehicles.
func (s *MongoRecordService) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	if s.Vehicles == nil {
		return nil, fmt.Errorf("vehicles collection is nil")
	}
	cursor, err := s.Vehicles.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer cursor.Close(ctx)

	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("decode vehicles: %w", err)
	}
	return vehicles, nil
}

// ListSupervisors returns all supervisors.
func (s *MongoRecordService) ListSupervisors(ctx context.Context) ([]models.SupervisorRecord, error) {
	if s.Supervisors == nil {
		return nil, fmt.Errorf("supervisors collection is nil")
	}
	cursor, err := s.Supervisors.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list supervisors: %w", err)
	}
	defer cursor.Close(ctx)

	var supervisors []models.SupervisorRecord
	if err := cursor.All(ctx, &supervisors); err != nil {
		return nil, fmt.Errorf("decode supervisors: %w", err)
	}
	return supervisors, nil
}

// ListInspections returns the most recent inspection rows, newest first.
func (s *MongoRecordService) ListInspections(ctx context.Context, limit int64) ([]models.Inspection, error) {
	if s.Inspections == nil {
		return nil, fmt.Errorf("inspections collection is nil")
	}
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cursor, err := s.Inspections.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	defer cursor.Close(ctx)

	var inspections []models.Inspection
	if err := cursor.All(ctx, &inspections); err != nil {
		return nil, fmt.Errorf("decode inspections: %w", err)
	}
	return inspections, nil
}

// InsertVehicle adds a vehicle through the management endpoint (the "add new
// vehicle" flow outside the wizard).
func (s *MongoRecordService) InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error) {
	if s.Vehicles == nil {
		return "", fmt.Errorf("vehicles collection is nil")
	}
	vehicle.CreatedAt = time.Now()
	result, err := s.Vehicles.InsertOne(ctx, vehicle)
	if err != nil {
		return "", fmt.Errorf("insert vehicle: %w", err)
	}
	return insertedHex(result)
}

// InsertSupervisor adds a supervisor through the management endpoint.
func (s *MongoRecordService) InsertSupervisor(ctx context.Context, supervisor models.SupervisorRecord) (string, error) {
	if s.Supervisors == nil {
		return "", fmt.Errorf("supervisors collection is nil")
	}
	supervisor.CreatedAt = time.Now()
	result, err := s.Supervisors.InsertOne(ctx, supervisor)
	if err != nil {
		return "", fmt.Errorf("insert supervisor: %w", err)
	}
	return insertedHex(result)
}

func insertedHex(result *mongo.InsertOneResult) (string, error) {
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted ID type %T", result.InsertedID)
	}
	return id.Hex(), nil
}
