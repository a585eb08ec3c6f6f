// Package draft is the local draft store: a keyed string-value persistence
// layer holding submitted inspection records and reference-list caches. It is
// the system of record of last resort; a completed inspection is durable once
// it lands here, whatever the remote record service did.
package draft

import (
	"encoding/json"
	"fmt"

	"github.com/citydev/fleetcheck/internal/models"
)

// Well-known keys. Values are JSON-serialized; readers tolerate missing or
// malformed values by defaulting to empty collections.
const (
	KeyInspections   = "fleetcheck-inspections"
	KeyVehicles      = "fleetcheck-vehicles"
	KeySupervisors   = "fleetcheck-supervisors"
	KeyDriverSession = "fleetcheck-driver"
	KeySlackWebhook  = "fleetcheck-slack-webhook"
	KeySheetsURL     = "fleetcheck-sheets-url"
)

// Store is the raw keyed string-value API.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// Records layers the typed FleetCheck collections over a Store.
//
// List updates are read-modify-write with no optimistic-concurrency check.
// That is acceptable for the intended single-writer usage; two processes
// sharing one store can interleave and lose appends.
type Records struct {
	store Store
}

// NewRecords creates typed access over the given store.
func NewRecords(store Store) *Records {
	return &Records{store: store}
}

// AppendInspection appends one report to the inspection history. This is the
// durability write: callers must treat a returned error as fatal to the
// submission action.
func (r *Records) AppendInspection(report models.InspectionReport) error {
	history := r.Inspections()
	history = append(history, report)
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal inspection history: %w", err)
	}
	if err := r.store.Set(KeyInspections, string(data)); err != nil {
		return fmt.Errorf("write inspection history: %w", err)
	}
	return nil
}

// Inspections returns the locally stored inspection history, oldest first.
func (r *Records) Inspections() []models.InspectionReport {
	var history []models.InspectionReport
	r.readJSON(KeyInspections, &history)
	return history
}

// SetVehicleCache replaces the cached vehicle reference list.
func (r *Records) SetVehicleCache(vehicles []models.VehicleSelection) error {
	return r.writeJSON(KeyVehicles, vehicles)
}

// VehicleCache returns the cached vehicle reference list.
func (r *Records) VehicleCache() []models.VehicleSelection {
	var vehicles []models.VehicleSelection
	r.readJSON(KeyVehicles, &vehicles)
	return vehicles
}

// SetSupervisorCache replaces the cached supervisor reference list.
func (r *Records) SetSupervisorCache(supervisors []models.Supervisor) error {
	return r.writeJSON(KeySupervisors, supervisors)
}

// SupervisorCache returns the cached supervisor reference list.
func (r *Records) SupervisorCache() []models.Supervisor {
	var supervisors []models.Supervisor
	r.readJSON(KeySupervisors, &supervisors)
	return supervisors
}

// SaveDriverSession persists the signed-in driver so a reload can resume at
// the start-of-day step.
func (r *Records) SaveDriverSession(driver models.DriverIdentity) error {
	return r.writeJSON(KeyDriverSession, driver)
}

// DriverSession returns the persisted driver identity, if any.
func (r *Records) DriverSession() (models.DriverIdentity, bool) {
	var driver models.DriverIdentity
	if !r.readJSON(KeyDriverSession, &driver) {
		return models.DriverIdentity{}, false
	}
	return driver, driver.Valid()
}

// ClearDriverSession removes the persisted driver identity.
func (r *Records) ClearDriverSession() error {
	return r.store.Delete(KeyDriverSession)
}

// SlackWebhookURL returns the stored Slack webhook URL, empty if unset.
func (r *Records) SlackWebhookURL() string {
	value, ok, err := r.store.Get(KeySlackWebhook)
	if err != nil || !ok {
		return ""
	}
	return value
}

// SetSlackWebhookURL stores the Slack webhook URL.
func (r *Records) SetSlackWebhookURL(url string) error {
	return r.store.Set(KeySlackWebhook, url)
}

// SheetsURL returns the stored spreadsheet URL, empty if unset.
func (r *Records) SheetsURL() string {
	value, ok, err := r.store.Get(KeySheetsURL)
	if err != nil || !ok {
		return ""
	}
	return value
}

// SetSheetsURL stores the spreadsheet URL.
func (r *Records) SetSheetsURL(url string) error {
	return r.store.Set(KeySheetsURL, url)
}

func (r *Records) readJSON(key string, out interface{}) bool {
	value, ok, err := r.store.Get(key)
	if err != nil || !ok {
		return false
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return false
	}
	return true
}

func (r *Records) writeJSON(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return r.store.Set(key, string(data))
}
