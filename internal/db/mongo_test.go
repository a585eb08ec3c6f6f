package db

import (
    "context"
    "os"
    "testing"

    "github.com/citydev/fleetcheck/internal/models"
)

func TestConnectMongo_BadURI(t *testing.T) {
    os.Setenv("MONGO_URI", "mongodb://bad:uri")
    defer os.Unsetenv("MONGO_URI")
    client, err := ConnectMongo()
    if err == nil {
        t.Error("expected error for bad URI, got nil")
    }
    if client != nil {
        t.Error("expected nil client on error")
    }
}

func TestMongoRecordService_NilCollections(t *testing.T) {
    service := &MongoRecordService{}
    ctx := context.Background()

    if _, err := service.CreateOrGetDriver(ctx, "Jane Doe", "D-42"); err == nil {
        t.Error("expected error when drivers collection is nil")
    }
    if _, err := service.CreateOrGetVehicle(ctx, models.VehicleSelection{Name: "Truck 7", PlateNumber: "ON-123"}); err == nil {
        t.Error("expected error when vehicles collection is nil")
    }
    if _, err := service.CreateOrGetSupervisor(ctx, models.Supervisor{Name: "Sam Lee", Email: "sam@example.com"}); err == nil {
        t.Error("expected error when supervisors collection is nil")
    }
    if _, err := service.SaveInspection(ctx, models.Inspection{}); err == nil {
        t.Error("expected error when inspections collection is nil")
    }
    if _, err := service.ListVehicles(ctx); err == nil {
        t.Error("expected error when vehicles collection is nil")
    }
}

func TestCreateOrGetVehicle_RequiresNaturalKey(t *testing.T) {
    client, err := ConnectMongo()
    if err != nil {
        // The natural-key check fires before any query, so exercise it with
        // a live connection when available and fall back to the guard.
        service := &MongoRecordService{}
        if _, err := service.CreateOrGetVehicle(context.Background(), models.VehicleSelection{Name: "Truck 7"}); err == nil {
            t.Error("expected error for vehicle without plate number")
        }
        return
    }
    defer client.Disconnect(context.Background())

    service := NewMongoRecordService(client.Database("test_fleetcheck"))
    if _, err := service.CreateOrGetVehicle(context.Background(), models.VehicleSelection{Name: "Truck 7"}); err == nil {
        t.Error("expected error for vehicle without plate number")
    }
}

// Integration test (requires running MongoDB)
func TestCreateOrGet_Idempotent_Integration(t *testing.T) {
    client, err := ConnectMongo()
    if err != nil {
        t.Skipf("failed to connect: %v, skipping integration test", err)
    }
    defer client.Disconnect(context.Background())

    database := client.Database("test_fleetcheck")
    for _, name := range []string{"drivers", "vehicles", "supervisors", "inspections"} {
        database.Collection(name).Drop(context.Background())
    }
    service := NewMongoRecordService(database)
    ctx := context.Background()

    first, err := service.CreateOrGetDriver(ctx, "Jane Doe", "D-42")
    if err != nil {
        t.Fatalf("create driver: %v", err)
    }
    second, err := service.CreateOrGetDriver(ctx, "Jane Doe", "D-42")
    if err != nil {
        t.Fatalf("get driver: %v", err)
    }
    if first != second {
        t.Errorf("create-or-get not idempotent: %s != %s", first, second)
    }

    v1, err := service.CreateOrGetVehicle(ctx, models.VehicleSelection{Name: "Truck 7", PlateNumber: "ON-123"})
    if err != nil {
        t.Fatalf("create vehicle: %v", err)
    }
    v2, _ := service.CreateOrGetVehicle(ctx, models.VehicleSelection{Name: "Truck 7", PlateNumber: "ON-123"})
    if v1 != v2 {
        t.Errorf("vehicle create-or-get not idempotent: %s != %s", v1, v2)
    }

    s1, err := service.CreateOrGetSupervisor(ctx, models.Supervisor{Name: "Sam Lee", Email: "sam@example.com"})
    if err != nil {
        t.Fatalf("create supervisor: %v", err)
    }
    s2, _ := service.CreateOrGetSupervisor(ctx, models.Supervisor{Name: "Sam Lee", Email: "sam@example.com"})
    if s1 != s2 {
        t.Errorf("supervisor create-or-get not idempotent: %s != %s", s1, s2)
    }
}
