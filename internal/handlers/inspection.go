package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/looplab/fsm"
	log "github.com/sirupsen/logrus"

	"github.com/citydev/fleetcheck/internal/draft"
	"github.com/citydev/fleetcheck/internal/models"
	"github.com/citydev/fleetcheck/internal/notify"
	"github.com/citydev/fleetcheck/internal/wizard"
)

// InspectionHandler drives wizard sessions over HTTP. Each step endpoint
// fires the matching wizard event; a guard refusal comes back as 422 with
// the per-field errors and the state unchanged.
type InspectionHandler struct {
	sessions *wizard.Manager
	drafts   *draft.Records
	email    *notify.EmailNotifier
	slack    *notify.SlackNotifier
	sheets   *notify.SheetsNotifier
	feed     *notify.FeedPublisher
	log      log.FieldLogger
}

// NewInspectionHandler creates the wizard HTTP handler.
func NewInspectionHandler(
	sessions *wizard.Manager,
	drafts *draft.Records,
	email *notify.EmailNotifier,
	slack *notify.SlackNotifier,
	sheets *notify.SheetsNotifier,
	feed *notify.FeedPublisher,
	logger log.FieldLogger,
) *InspectionHandler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &InspectionHandler{
		sessions: sessions,
		drafts:   drafts,
		email:    email,
		slack:    slack,
		sheets:   sheets,
		feed:     feed,
		log:      logger,
	}
}

type stateResponse struct {
	SessionID string       `json:"session_id"`
	State     string       `json:"state"`
	Draft     wizard.Draft `json:"draft"`
}

type submitResponse struct {
	SessionID string                  `json:"session_id"`
	State     string                  `json:"state"`
	Report    models.InspectionReport `json:"report"`
	Outcome   wizard.Outcome          `json:"outcome"`
	Warning   string                  `json:"warning,omitempty"`
}

// Create starts a wizard session. With ?resume=true a driver session
// persisted by an earlier sign-in skips straight to start-of-day.
func (h *InspectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var session *wizard.Wizard
	if r.URL.Query().Get("resume") == "true" {
		session = h.sessions.CreateResumed()
	} else {
		session = h.sessions.Create()
	}
	writeJSON(w, http.StatusCreated, stateResponse{
		SessionID: session.ID(),
		State:     session.State(),
		Draft:     session.Draft(),
	})
}

// Get returns the current state and draft snapshot.
func (h *InspectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{
		SessionID: session.ID(),
		State:     session.State(),
		Draft:     session.Draft(),
	})
}

// SignIn handles the driver sign-in step.
func (h *InspectionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var driver models.DriverIdentity
	if !decodeBody(w, r, &driver) {
		return
	}
	h.step(w, session, session.SignIn(r.Context(), driver))
}

type startOfDayRequest struct {
	Vehicle models.VehicleSelection `json:"vehicle"`
	models.StartOfDayRecord
}

// StartOfDay handles the vehicle selection and start-of-day checklist step.
func (h *InspectionHandler) StartOfDay(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req startOfDayRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.step(w, session, session.StartOfDay(r.Context(), req.Vehicle, req.StartOfDayRecord))
}

// EndOfDay handles the end-of-day checklist step.
func (h *InspectionHandler) EndOfDay(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var record models.EndOfDayRecord
	if !decodeBody(w, r, &record) {
		return
	}
	h.step(w, session, session.EndOfDay(r.Context(), record))
}

// Signature captures the signature artifact.
func (h *InspectionHandler) Signature(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Signature string `json:"signature"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	h.step(w, session, session.Sign(r.Context(), req.Signature))
}

// Review handles back/proceed on the optional review step.
func (h *InspectionHandler) Review(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Action string `json:"action"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	switch req.Action {
	case "back":
		h.step(w, session, session.Back(r.Context()))
	case "proceed":
		h.step(w, session, session.Proceed(r.Context()))
	default:
		http.Error(w, "action must be back or proceed", http.StatusBadRequest)
	}
}

// Submit records the supervisor choice and runs the submission protocol. A
// deferred outcome still returns 200; the warning tells the operator the
// report lives only in local storage.
func (h *InspectionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Supervisor models.Supervisor `json:"supervisor"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	report, outcome, err := session.Submit(r.Context(), req.Supervisor)
	if err != nil && outcome.Status == "" {
		h.stepError(w, err)
		return
	}

	resp := submitResponse{
		SessionID: session.ID(),
		State:     session.State(),
		Report:    report,
		Outcome:   outcome,
	}
	if err != nil {
		// The local append failed; the submission outcome still stands.
		resp.Warning = "Report could not be saved to local history: " + err.Error()
	} else if outcome.Status == wizard.StatusDeferred {
		resp.Warning = "Report saved locally. " + outcome.Reason
	}

	// Fleet event feed is fire-and-forget.
	go func() {
		if err := h.feed.Publish(report); err != nil {
			h.log.WithError(err).Warn("fleet event feed publish failed")
		}
	}()

	writeJSON(w, http.StatusOK, resp)
}

// New resets the session for the next inspection.
func (h *InspectionHandler) New(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	h.step(w, session, session.NewInspection(r.Context()))
}

type notifyResponse struct {
	Channel string `json:"channel"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NotifyEmail dispatches the confirmation email for the submitted report.
func (h *InspectionHandler) NotifyEmail(w http.ResponseWriter, r *http.Request) {
	report, ok := h.submittedReport(w, r)
	if !ok {
		return
	}
	h.notifyResult(w, "email", h.email.Send(r.Context(), report),
		"Confirmation email sent")
}

// NotifySlack posts the report summary to the stored or supplied webhook.
func (h *InspectionHandler) NotifySlack(w http.ResponseWriter, r *http.Request) {
	report, ok := h.submittedReport(w, r)
	if !ok {
		return
	}
	var req struct {
		WebhookURL string `json:"webhook_url"`
	}
	decodeOptionalBody(r, &req)
	webhookURL := req.WebhookURL
	if webhookURL == "" {
		webhookURL = h.drafts.SlackWebhookURL()
	} else if err := h.drafts.SetSlackWebhookURL(webhookURL); err != nil {
		h.log.WithError(err).Warn("slack webhook URL store failed")
	}
	h.notifyResult(w, "slack", h.slack.Send(r.Context(), webhookURL, report),
		"Inspection report sent to Slack")
}

// NotifySheets appends the report row to the stored or supplied spreadsheet.
func (h *InspectionHandler) NotifySheets(w http.ResponseWriter, r *http.Request) {
	report, ok := h.submittedReport(w, r)
	if !ok {
		return
	}
	var req struct {
		SheetURL string `json:"sheet_url"`
	}
	decodeOptionalBody(r, &req)
	sheetURL := req.SheetURL
	if sheetURL == "" {
		sheetURL = h.drafts.SheetsURL()
	} else if err := h.drafts.SetSheetsURL(sheetURL); err != nil {
		h.log.WithError(err).Warn("sheet URL store failed")
	}
	h.notifyResult(w, "sheets", h.sheets.Send(r.Context(), sheetURL, report),
		"Inspection data sent to spreadsheet")
}

func (h *InspectionHandler) notifyResult(w http.ResponseWriter, channel string, err error, okMessage string) {
	if err != nil {
		writeJSON(w, http.StatusBadGateway, notifyResponse{
			Channel: channel,
			Success: false,
			Error:   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, notifyResponse{
		Channel: channel,
		Success: true,
		Message: okMessage,
	})
}

func (h *InspectionHandler) session(w http.ResponseWriter, r *http.Request) (*wizard.Wizard, bool) {
	id := r.PathValue("id")
	session, ok := h.sessions.Get(id)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func (h *InspectionHandler) submittedReport(w http.ResponseWriter, r *http.Request) (models.InspectionReport, bool) {
	session, ok := h.session(w, r)
	if !ok {
		return models.InspectionReport{}, false
	}
	report, _, ok := session.Report()
	if !ok {
		http.Error(w, "No submitted report in this session", http.StatusConflict)
		return models.InspectionReport{}, false
	}
	return report, true
}

func (h *InspectionHandler) step(w http.ResponseWriter, session *wizard.Wizard, err error) {
	if err != nil {
		h.stepError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{
		SessionID: session.ID(),
		State:     session.State(),
		Draft:     session.Draft(),
	})
}

func (h *InspectionHandler) stepError(w http.ResponseWriter, err error) {
	if verr, ok := wizard.AsValidationError(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"errors": verr.Fields,
		})
		return
	}
	var invalid fsm.InvalidEventError
	if errors.As(err, &invalid) || errors.Is(err, wizard.ErrSubmissionInFlight) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	h.log.WithError(err).Error("wizard step failed")
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// decodeOptionalBody tolerates an empty or malformed body; the caller falls
// back to stored settings.
func decodeOptionalBody(r *http.Request, out interface{}) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		return
	}
	_ = json.Unmarshal(body, out)
}
