package handlers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/citydev/fleetcheck/internal/db"
	"github.com/citydev/fleetcheck/internal/draft"
	"github.com/citydev/fleetcheck/internal/models"
	"github.com/citydev/fleetcheck/internal/refdata"
)

// RecordsHandler serves the reference lists, the inspection history view,
// and the admin-side vehicle and supervisor management.
type RecordsHandler struct {
	records db.RecordService
	cache   *refdata.Cache
	drafts  *draft.Records
	log     log.FieldLogger
}

// NewRecordsHandler creates the reference-data handler.
func NewRecordsHandler(records db.RecordService, cache *refdata.Cache, drafts *draft.Records, logger log.FieldLogger) *RecordsHandler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &RecordsHandler{records: records, cache: cache, drafts: drafts, log: logger}
}

// ListVehicles serves the vehicle reference list, cached copy on remote
// failure.
func (h *RecordsHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, fromCache := h.cache.Vehicles(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"vehicles":   vehicles,
		"from_cache": fromCache,
	})
}

// ListSupervisors serves the supervisor reference list, cached copy on
// remote failure.
func (h *RecordsHandler) ListSupervisors(w http.ResponseWriter, r *http.Request) {
	supervisors, fromCache := h.cache.Supervisors(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"supervisors": supervisors,
		"from_cache":  fromCache,
	})
}

// CreateVehicle adds a fleet vehicle. Gated by the manage_vehicles
// permission at the router.
func (h *RecordsHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var vehicle models.Vehicle
	if !decodeBody(w, r, &vehicle) {
		return
	}
	if vehicle.Name == "" || vehicle.PlateNumber == "" {
		http.Error(w, "Vehicle name and plate number are required", http.StatusBadRequest)
		return
	}
	vehicle.CreatedAt = time.Now()

	id, err := h.records.InsertVehicle(r.Context(), vehicle)
	if err != nil {
		h.log.WithError(err).Error("vehicle insert failed")
		http.Error(w, "Failed to create vehicle", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// CreateSupervisor adds a supervisor. Gated by the manage_supervisors
// permission at the router.
func (h *RecordsHandler) CreateSupervisor(w http.ResponseWriter, r *http.Request) {
	var supervisor models.SupervisorRecord
	if !decodeBody(w, r, &supervisor) {
		return
	}
	if supervisor.Name == "" || supervisor.Email == "" {
		http.Error(w, "Supervisor name and email are required", http.StatusBadRequest)
		return
	}
	supervisor.CreatedAt = time.Now()

	id, err := h.records.InsertSupervisor(r.Context(), supervisor)
	if err != nil {
		h.log.WithError(err).Error("supervisor insert failed")
		http.Error(w, "Failed to create supervisor", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// History serves the locally stored inspection history. The local store is
// the authoritative view here: it holds every submission, including the
// deferred ones the remote service never saw.
func (h *RecordsHandler) History(w http.ResponseWriter, r *http.Request) {
	history := h.drafts.Inspections()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"inspections": history,
		"count":       len(history),
	})
}
