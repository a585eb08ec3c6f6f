package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Vehicle represents a fleet vehicle.
type Vehicle struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Type        string             `bson:"type" json:"type"` // "Truck", "Van", "Plow", ...
	PlateNumber string             `bson:"plate_number" json:"plate_number"`
	Department  string             `bson:"department" json:"department"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// VehicleSelection is the vehicle choice captured during the start-of-day
// step. The natural key for create-or-get is (Name, PlateNumber).
type VehicleSelection struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	PlateNumber string `json:"plate_number"`
	Department  string `json:"department"`
}

// Valid reports whether the selection carries its natural key.
func (v VehicleSelection) Valid() bool {
	return v.Name != "" && v.PlateNumber != ""
}

// Selection converts a persisted vehicle into a wizard selection.
func (v Vehicle) Selection() VehicleSelection {
	return VehicleSelection{
		ID:          v.ID.Hex(),
		Name:        v.Name,
		Type:        v.Type,
		PlateNumber: v.PlateNumber,
		Department:  v.Department,
	}
}
