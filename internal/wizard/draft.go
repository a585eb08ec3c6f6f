package wizard

import (
	"time"

	"github.com/citydev/fleetcheck/internal/models"
)

// Draft is the wizard's accumulated state. It is a value type: every
// successful transition produces the next draft by functional update, so a
// refused transition leaves the previous draft untouched and the final
// aggregate is a pure function of what was collected.
type Draft struct {
	Driver     models.DriverIdentity    `json:"driver"`
	Vehicle    models.VehicleSelection  `json:"vehicle"`
	StartOfDay *models.StartOfDayRecord `json:"start_of_day,omitempty"`
	EndOfDay   *models.EndOfDayRecord   `json:"end_of_day,omitempty"`
	Signature  string                   `json:"signature,omitempty"`
	Supervisor *models.Supervisor       `json:"supervisor,omitempty"`
}

func (d Draft) withDriver(driver models.DriverIdentity) Draft {
	d.Driver = driver
	return d
}

func (d Draft) withStartOfDay(vehicle models.VehicleSelection, record models.StartOfDayRecord) Draft {
	d.Vehicle = vehicle
	d.StartOfDay = &record
	return d
}

func (d Draft) withEndOfDay(record models.EndOfDayRecord) Draft {
	d.EndOfDay = &record
	return d
}

func (d Draft) withSignature(signature string) Draft {
	d.Signature = signature
	return d
}

func (d Draft) withSupervisor(supervisor models.Supervisor) Draft {
	d.Supervisor = &supervisor
	return d
}

// compose merges the collected steps into the immutable report aggregate.
// Only called once every step is present.
func (d Draft) compose(now time.Time) models.InspectionReport {
	report := models.InspectionReport{
		ReportID:    models.NewReportID(now),
		Driver:      d.Driver,
		Vehicle:     d.Vehicle,
		Signature:   d.Signature,
		SubmittedAt: now,
	}
	if d.StartOfDay != nil {
		report.StartOfDay = *d.StartOfDay
	}
	if d.EndOfDay != nil {
		report.EndOfDay = *d.EndOfDay
	}
	if d.Supervisor != nil {
		report.Supervisor = *d.Supervisor
	}
	return report
}
