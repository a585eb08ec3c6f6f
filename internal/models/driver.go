package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// DriverIdentity is the sign-in identity entered once at the start of an
// inspection. It is immutable for the lifetime of the wizard session.
type DriverIdentity struct {
	Name string `bson:"name" json:"name"`
	ID   string `bson:"driver_id" json:"id"`
}

// Valid reports whether the identity is complete enough to sign in.
func (d DriverIdentity) Valid() bool {
	return d.Name != "" && d.ID != ""
}

// Driver is the persisted driver row, keyed by the natural DriverID.
type Driver struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	DriverID  string             `bson:"driver_id" json:"driver_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
