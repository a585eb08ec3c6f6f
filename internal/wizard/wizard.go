// Package wizard drives the inspection workflow: a linear state machine
// collecting driver identity, the two daily checklists, a signature, an
// optional review, and a supervisor choice, then submitting the composed
// report with a local fallback.
package wizard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/looplab/fsm"
	log "github.com/sirupsen/logrus"

	"github.com/citydev/fleetcheck/internal/db"
	"github.com/citydev/fleetcheck/internal/draft"
	"github.com/citydev/fleetcheck/internal/models"
)

// Wizard states. The flow is linear; the only extra edges are the review
// step's back/proceed pair and the terminal reset.
const (
	StateSignIn     = "signin"
	StateStartOfDay = "startday"
	StateEndOfDay   = "endday"
	StateSignature  = "signature"
	StateReview     = "review"
	StateSupervisor = "supervisor"
	StateSuccess    = "success"
)

// Wizard events.
const (
	EventSignIn        = "sign_in"
	EventSubmitStart   = "submit_start"
	EventSubmitEnd     = "submit_end"
	EventSign          = "sign"
	EventBack          = "back"
	EventProceed       = "proceed"
	EventSubmit        = "submit"
	EventNewInspection = "new_inspection"
)

// Config wires a wizard's collaborators.
type Config struct {
	Records db.RecordService
	Drafts  *draft.Records
	// IncludeReview inserts the read-only review step between signature and
	// supervisor selection.
	IncludeReview bool
	Logger        log.FieldLogger
}

// Wizard is one driver's inspection session. Methods are safe for use from
// concurrent handler goroutines; in practice a session has a single user and
// the lock mirrors the disabled-controls behavior of the original flow.
type Wizard struct {
	id      string
	mu      sync.Mutex
	machine *fsm.FSM

	draft     Draft
	report    *models.InspectionReport
	outcome   *Outcome
	submitter *Submitter

	records       db.RecordService
	drafts        *draft.Records
	includeReview bool
	log           log.FieldLogger
}

// New creates a wizard at the sign-in step.
func New(id string, cfg Config) *Wizard {
	return build(id, cfg, StateSignIn, Draft{})
}

// Resume creates a wizard at the start-of-day step for a driver persisted by
// an earlier sign-in. The identity comes from the dedicated session key in
// the draft store, never from another session's memory.
func Resume(id string, cfg Config, driver models.DriverIdentity) *Wizard {
	return build(id, cfg, StateStartOfDay, Draft{Driver: driver})
}

func build(id string, cfg Config, initial string, d Draft) *Wizard {
	logger := cfg.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	w := &Wizard{
		id:            id,
		draft:         d,
		submitter:     NewSubmitter(cfg.Records, cfg.Drafts, logger),
		records:       cfg.Records,
		drafts:        cfg.Drafts,
		includeReview: cfg.IncludeReview,
		log:           logger.WithField("session_id", id),
	}

	signDst := StateSupervisor
	if cfg.IncludeReview {
		signDst = StateReview
	}
	events := fsm.Events{
		{Name: EventSignIn, Src: []string{StateSignIn}, Dst: StateStartOfDay},
		{Name: EventSubmitStart, Src: []string{StateStartOfDay}, Dst: StateEndOfDay},
		{Name: EventSubmitEnd, Src: []string{StateEndOfDay}, Dst: StateSignature},
		{Name: EventSign, Src: []string{StateSignature}, Dst: signDst},
		{Name: EventBack, Src: []string{StateReview}, Dst: StateSignature},
		{Name: EventProceed, Src: []string{StateReview}, Dst: StateSupervisor},
		{Name: EventSubmit, Src: []string{StateSupervisor}, Dst: StateSuccess},
		{Name: EventNewInspection, Src: []string{StateSuccess}, Dst: StateSignIn},
	}

	// Guards: a canceled event leaves the machine in its source state and
	// the draft untouched.
	callbacks := fsm.Callbacks{
		"before_" + EventSignIn: func(ctx context.Context, e *fsm.Event) {
			driver := e.Args[0].(models.DriverIdentity)
			fields := map[string]string{}
			if strings.TrimSpace(driver.Name) == "" {
				fields["name"] = "driver name is required"
			}
			if strings.TrimSpace(driver.ID) == "" {
				fields["id"] = "driver ID is required"
			}
			if len(fields) > 0 {
				e.Cancel(&ValidationError{Fields: fields})
			}
		},
		"before_" + EventSubmitStart: func(ctx context.Context, e *fsm.Event) {
			vehicle := e.Args[0].(models.VehicleSelection)
			record := e.Args[1].(models.StartOfDayRecord)
			fields := map[string]string{}
			if !vehicle.Valid() {
				fields["vehicle"] = "a vehicle with name and plate number must be selected"
			}
			if record.Date == "" {
				fields["date"] = "inspection date is required"
			}
			if record.Time == "" {
				fields["time"] = "start time is required"
			}
			if record.OdometerStart < 0 {
				fields["odometerStart"] = "odometer reading cannot be negative"
			}
			if len(fields) > 0 {
				e.Cancel(&ValidationError{Fields: fields})
			}
		},
		"before_" + EventSubmitEnd: func(ctx context.Context, e *fsm.Event) {
			record := e.Args[0].(models.EndOfDayRecord)
			fields := map[string]string{}
			if record.EndTime == "" {
				fields["endTime"] = "end time is required"
			}
			if !models.IsValidCondition(record.EquipmentCondition) {
				fields["equipmentCondition"] = "overall equipment condition is required"
			}
			if len(fields) > 0 {
				e.Cancel(&ValidationError{Fields: fields})
			}
		},
		"before_" + EventSign: func(ctx context.Context, e *fsm.Event) {
			signature := e.Args[0].(string)
			if strings.TrimSpace(signature) == "" {
				e.Cancel(&ValidationError{Fields: map[string]string{
					"signature": "signature cannot be empty",
				}})
			}
		},
		"before_" + EventSubmit: func(ctx context.Context, e *fsm.Event) {
			supervisor := e.Args[0].(models.Supervisor)
			if !supervisor.Valid() {
				e.Cancel(&ValidationError{Fields: map[string]string{
					"supervisor": "a supervisor with name and email must be selected",
				}})
			}
		},
	}

	w.machine = fsm.NewFSM(initial, events, callbacks)
	return w
}

// ID returns the session identifier.
func (w *Wizard) ID() string { return w.id }

// State returns the current wizard state.
func (w *Wizard) State() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.machine.Current()
}

// Draft returns a copy of the accumulated draft.
func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// Report returns the submitted report and outcome once the wizard has
// reached the success state.
func (w *Wizard) Report() (models.InspectionReport, Outcome, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.report == nil || w.outcome == nil {
		return models.InspectionReport{}, Outcome{}, false
	}
	return *w.report, *w.outcome, true
}

// SignIn records the driver identity and advances to start-of-day. The
// remote create-or-get and the session persistence are best-effort side
// effects: their failure is logged and never blocks the driver.
func (w *Wizard) SignIn(ctx context.Context, driver models.DriverIdentity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.machine.Event(ctx, EventSignIn, driver); err != nil {
		return err
	}
	w.draft = w.draft.withDriver(driver)

	if _, err := w.records.CreateOrGetDriver(ctx, driver.Name, driver.ID); err != nil {
		w.log.WithError(err).Warn("driver create-or-get failed, continuing")
	}
	if err := w.drafts.SaveDriverSession(driver); err != nil {
		w.log.WithError(err).Warn("driver session persistence failed, continuing")
	}
	w.log.WithField("driver_id", driver.ID).Info("driver signed in")
	return nil
}

// StartOfDay records the vehicle selection and start-of-day checklist.
func (w *Wizard) StartOfDay(ctx context.Context, vehicle models.VehicleSelection, record models.StartOfDayRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if record.Equipment == nil {
		record.Equipment = models.EquipmentChecklist.EmptyEquipment()
	}
	if err := w.machine.Event(ctx, EventSubmitStart, vehicle, record); err != nil {
		return err
	}
	w.draft = w.draft.withStartOfDay(vehicle, record)
	return nil
}

// EndOfDay records the end-of-day checklist. The start-of-day record is
// read-only here.
func (w *Wizard) EndOfDay(ctx context.Context, record models.EndOfDayRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if record.Equipment == nil {
		record.Equipment = models.EquipmentChecklist.EmptyEquipment()
	}
	if err := w.machine.Event(ctx, EventSubmitEnd, record); err != nil {
		return err
	}
	w.draft = w.draft.withEndOfDay(record)
	return nil
}

// Sign captures the signature artifact. Blocked while the canvas is empty.
func (w *Wizard) Sign(ctx context.Context, signature string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.machine.Event(ctx, EventSign, signature); err != nil {
		return err
	}
	w.draft = w.draft.withSignature(signature)
	return nil
}

// Back returns from the review step to the signature step. No data changes.
func (w *Wizard) Back(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.machine.Event(ctx, EventBack)
}

// Proceed moves from the review step to supervisor selection.
func (w *Wizard) Proceed(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.machine.Event(ctx, EventProceed)
}

// Submit records the supervisor choice, runs the submission protocol, and
// lands in the success state on both the submitted and the deferred path.
// The returned error is a guard refusal or a local draft store failure; the
// latter leaves the wizard in success with the outcome still reported.
func (w *Wizard) Submit(ctx context.Context, supervisor models.Supervisor) (models.InspectionReport, Outcome, error) {
	if !w.mu.TryLock() {
		return models.InspectionReport{}, Outcome{}, ErrSubmissionInFlight
	}
	defer w.mu.Unlock()

	if err := w.machine.Event(ctx, EventSubmit, supervisor); err != nil {
		return models.InspectionReport{}, Outcome{}, err
	}
	w.draft = w.draft.withSupervisor(supervisor)

	report, outcome, err := w.submitter.Submit(ctx, w.draft.compose(time.Now()))
	w.report = &report
	w.outcome = &outcome
	w.log.WithFields(log.Fields{
		"report_id": report.ReportID,
		"status":    outcome.Status,
	}).Info("inspection submitted")
	return report, outcome, err
}

// NewInspection resets the wizard to sign-in, clearing every draft field,
// the submitted report, and the persisted driver session.
func (w *Wizard) NewInspection(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.machine.Event(ctx, EventNewInspection); err != nil {
		return err
	}
	w.draft = Draft{}
	w.report = nil
	w.outcome = nil
	if err := w.drafts.ClearDriverSession(); err != nil {
		w.log.WithError(err).Warn("driver session clear failed")
	}
	return nil
}
