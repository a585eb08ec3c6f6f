package models

import (
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EquipmentCondition is the overall end-of-day condition rating.
type EquipmentCondition string

const (
	ConditionExcellent EquipmentCondition = "excellent"
	ConditionGood      EquipmentCondition = "good"
	ConditionFair      EquipmentCondition = "fair"
	ConditionPoor      EquipmentCondition = "poor"
)

// IsValidCondition checks if a condition rating is valid.
func IsValidCondition(c EquipmentCondition) bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	default:
		return false
	}
}

// StartOfDayRecord is captured when the driver submits the start-of-day step.
type StartOfDayRecord struct {
	Date          string          `bson:"date" json:"date"` // YYYY-MM-DD
	Time          string          `bson:"time" json:"time"` // HH:MM
	OdometerStart int             `bson:"odometer_start" json:"odometerStart"`
	Notes         string          `bson:"notes" json:"notes"`
	Equipment     map[string]bool `bson:"equipment" json:"equipment"`
}

// EndOfDayRecord is captured at the end-of-day step. OdometerEnd is a
// pointer: nil means the reading was never entered, which is distinct from
// an entered zero.
type EndOfDayRecord struct {
	EndTime            string             `bson:"end_time" json:"endTime"`
	OdometerEnd        *int               `bson:"odometer_end,omitempty" json:"odometerEnd,omitempty"`
	EquipmentCondition EquipmentCondition `bson:"equipment_condition" json:"equipmentCondition"`
	DamageReport       string             `bson:"damage_report" json:"damageReport"`
	Notes              string             `bson:"notes" json:"notes"`
	Equipment          map[string]bool    `bson:"equipment" json:"equipment"`
}

// InspectionReport is the immutable aggregate composed at the final wizard
// step. It is appended (never mutated) to the local draft store; RemoteID is
// set only when the remote record service accepted the row, Error only when
// the submission fell back to local storage.
type InspectionReport struct {
	ReportID    string           `json:"report_id"`
	Driver      DriverIdentity   `json:"driver"`
	Vehicle     VehicleSelection `json:"vehicle"`
	StartOfDay  StartOfDayRecord `json:"start_of_day"`
	EndOfDay    EndOfDayRecord   `json:"end_of_day"`
	Signature   string           `json:"signature"`
	Supervisor  Supervisor       `json:"supervisor"`
	SubmittedAt time.Time        `json:"submitted_at"`
	RemoteID    string           `json:"remote_id,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// Distance returns the miles driven, derived from the two odometer
// readings. The second return is false when the end reading is unavailable.
// Negative values are possible and are reported as-is; rejecting them is a
// reviewer's call, not the wizard's.
func (r InspectionReport) Distance() (int, bool) {
	if r.EndOfDay.OdometerEnd == nil {
		return 0, false
	}
	return *r.EndOfDay.OdometerEnd - r.StartOfDay.OdometerStart, true
}

// NewReportID generates the human-readable report identifier,
// e.g. "FL-20250614-042". The 3-digit random suffix is a same-day collision
// budget, not a uniqueness guarantee.
func NewReportID(now time.Time) string {
	return fmt.Sprintf("FL-%s-%03d", now.Format("20060102"), rand.Intn(1000))
}

// Inspection is the persisted inspection row, referencing the resolved
// driver/vehicle/supervisor rows.
type Inspection struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DriverID           string             `bson:"driver_id" json:"driver_id"`
	VehicleID          string             `bson:"vehicle_id" json:"vehicle_id"`
	SupervisorID       string             `bson:"supervisor_id" json:"supervisor_id"`
	InspectionDate     string             `bson:"inspection_date" json:"inspection_date"`
	StartTime          string             `bson:"start_time" json:"start_time"`
	EndTime            string             `bson:"end_time" json:"end_time"`
	OdometerStart      int                `bson:"odometer_start" json:"odometer_start"`
	OdometerEnd        *int               `bson:"odometer_end,omitempty" json:"odometer_end,omitempty"`
	EquipmentIssues    map[string]bool    `bson:"equipment_issues" json:"equipment_issues"`
	StartNotes         string             `bson:"start_notes" json:"start_notes"`
	EndNotes           string             `bson:"end_notes" json:"end_notes"`
	DamageReport       string             `bson:"damage_report" json:"damage_report"`
	EquipmentCondition EquipmentCondition `bson:"equipment_condition" json:"equipment_condition"`
	SignatureData      string             `bson:"signature_data" json:"signature_data"`
	Status             string             `bson:"status" json:"status"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
}

// Row flattens a completed report into the persisted inspection shape. The
// three IDs come from the create-or-get resolution that precedes the insert.
func (r InspectionReport) Row(driverID, vehicleID, supervisorID string) Inspection {
	return Inspection{
		DriverID:           driverID,
		VehicleID:          vehicleID,
		SupervisorID:       supervisorID,
		InspectionDate:     r.StartOfDay.Date,
		StartTime:          r.StartOfDay.Time,
		EndTime:            r.EndOfDay.EndTime,
		OdometerStart:      r.StartOfDay.OdometerStart,
		OdometerEnd:        r.EndOfDay.OdometerEnd,
		EquipmentIssues:    r.StartOfDay.Equipment,
		StartNotes:         r.StartOfDay.Notes,
		EndNotes:           r.EndOfDay.Notes,
		DamageReport:       r.EndOfDay.DamageReport,
		EquipmentCondition: r.EndOfDay.EquipmentCondition,
		SignatureData:      r.Signature,
		Status:             "completed",
	}
}
