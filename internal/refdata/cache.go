// Package refdata serves the vehicle and supervisor reference lists with a
// local fallback: remote wins when reachable, the cached copy otherwise.
package refdata

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/citydev/fleetcheck/internal/db"
	"github.com/citydev/fleetcheck/internal/draft"
	"github.com/citydev/fleetcheck/internal/models"
)

// Cache is the read path for reference data. Successful remote lists are
// written through to the draft store so the wizard keeps working offline.
type Cache struct {
	records db.RecordService
	drafts  *draft.Records
	log     log.FieldLogger
}

// NewCache creates a cache over the remote record service and the local
// draft store.
func NewCache(records db.RecordService, drafts *draft.Records, logger log.FieldLogger) *Cache {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Cache{records: records, drafts: drafts, log: logger}
}

// Vehicles returns the vehicle list, remote-first. The returned flag reports
// whether the list came from the local cache.
func (c *Cache) Vehicles(ctx context.Context) ([]models.VehicleSelection, bool) {
	vehicles, err := c.records.ListVehicles(ctx)
	if err != nil {
		c.log.WithError(err).Warn("vehicle list fetch failed, serving cache")
		return c.drafts.VehicleCache(), true
	}
	selections := make([]models.VehicleSelection, 0, len(vehicles))
	for _, v := range vehicles {
		selections = append(selections, v.Selection())
	}
	if err := c.drafts.SetVehicleCache(selections); err != nil {
		c.log.WithError(err).Warn("vehicle cache write failed")
	}
	return selections, false
}

// Supervisors returns the supervisor list, remote-first. The returned flag
// reports whether the list came from the local cache.
func (c *Cache) Supervisors(ctx context.Context) ([]models.Supervisor, bool) {
	records, err := c.records.ListSupervisors(ctx)
	if err != nil {
		c.log.WithError(err).Warn("supervisor list fetch failed, serving cache")
		return c.drafts.SupervisorCache(), true
	}
	supervisors := make([]models.Supervisor, 0, len(records))
	for _, r := range records {
		supervisors = append(supervisors, r.Selection())
	}
	if err := c.drafts.SetSupervisorCache(supervisors); err != nil {
		c.log.WithError(err).Warn("supervisor cache write failed")
	}
	return supervisors, false
}
