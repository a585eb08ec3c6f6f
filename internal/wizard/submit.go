package wizard

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/citydev/fleetcheck/internal/db"
	"github.com/citydev/fleetcheck/internal/draft"
	"github.com/citydev/fleetcheck/internal/models"
)

// Status distinguishes the two submission outcomes. Both lead to the same
// wizard state; the distinction stays observable for history and audit.
type Status string

const (
	// StatusSubmitted: the remote record service accepted the inspection.
	StatusSubmitted Status = "submitted"
	// StatusDeferred: a remote call failed and the report lives only in the
	// local draft store.
	StatusDeferred Status = "deferred"
)

// DeferredReason is the error marker recorded on a report that fell back to
// local storage.
const DeferredReason = "Failed to save to database"

// Outcome is the result of one Submit call.
type Outcome struct {
	Status   Status `json:"status"`
	RemoteID string `json:"remote_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Submitter durably records completed inspection reports: best-effort remote
// insert, unconditional local append. The driver's work is never lost to a
// remote failure.
type Submitter struct {
	records db.RecordService
	drafts  *draft.Records
	log     log.FieldLogger
}

// NewSubmitter creates a submitter over the given remote service and local
// draft records.
func NewSubmitter(records db.RecordService, drafts *draft.Records, logger log.FieldLogger) *Submitter {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Submitter{records: records, drafts: drafts, log: logger}
}

// Submit resolves the three reference rows, inserts the inspection row, and
// appends the (marked) report to local history. Remote failures are caught
// and downgraded to a deferred outcome; the only error Submit returns is a
// failed local append, the last line of durability.
//
// The four remote calls are sequential and non-atomic; a failure partway can
// leave orphan reference rows (accepted, see DESIGN.md).
func (s *Submitter) Submit(ctx context.Context, report models.InspectionReport) (models.InspectionReport, Outcome, error) {
	outcome := Outcome{Status: StatusSubmitted}

	remoteID, err := s.insertRemote(ctx, report)
	if err != nil {
		s.log.WithError(err).WithField("report_id", report.ReportID).
			Warn("remote submission failed, deferring to local draft store")
		report.Error = DeferredReason
		outcome = Outcome{Status: StatusDeferred, Reason: DeferredReason}
	} else {
		report.RemoteID = remoteID
		outcome.RemoteID = remoteID
	}

	// The local append happens on both paths: on success it is the fast
	// local copy for history views, on failure it is the only record.
	if err := s.drafts.AppendInspection(report); err != nil {
		s.log.WithError(err).WithField("report_id", report.ReportID).
			Error("local draft store append failed")
		return report, outcome, err
	}
	return report, outcome, nil
}

func (s *Submitter) insertRemote(ctx context.Context, report models.InspectionReport) (string, error) {
	driverID, err := s.records.CreateOrGetDriver(ctx, report.Driver.Name, report.Driver.ID)
	if err != nil {
		return "", err
	}
	vehicleID, err := s.records.CreateOrGetVehicle(ctx, report.Vehicle)
	if err != nil {
		return "", err
	}
	supervisorID, err := s.records.CreateOrGetSupervisor(ctx, report.Supervisor)
	if err != nil {
		return "", err
	}
	return s.records.SaveInspection(ctx, report.Row(driverID, vehicleID, supervisorID))
}
