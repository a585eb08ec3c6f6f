package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/citydev/fleetcheck/internal/models"
)

// EmailNotifier sends the confirmation email by delegating delivery to the
// server-side mail collaborator: it builds the HTML body here and POSTs the
// ready-to-send message as JSON.
type EmailNotifier struct {
	FunctionURL string
	Client      *http.Client
	Log         log.FieldLogger
}

// NewEmailNotifier creates an email notifier against the given mail function
// endpoint.
func NewEmailNotifier(functionURL string, logger log.FieldLogger) *EmailNotifier {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &EmailNotifier{
		FunctionURL: functionURL,
		Client:      &http.Client{Timeout: 15 * time.Second},
		Log:         logger,
	}
}

type mailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

var emailBody = template.Must(template.New("report").Parse(`
<h2>FleetCheck Inspection Report {{.ReportID}}</h2>
<table border="1" cellpadding="6" cellspacing="0">
  <tr><td>Driver</td><td>{{.DriverName}} ({{.DriverID}})</td></tr>
  <tr><td>Vehicle</td><td>{{.VehicleName}} (plate {{.PlateNumber}})</td></tr>
  <tr><td>Date</td><td>{{.Date}}</td></tr>
  <tr><td>Shift</td><td>{{.StartTime}} to {{.EndTime}}</td></tr>
  <tr><td>Odometer</td><td>{{.OdometerStart}} to {{.OdometerEnd}} ({{.Miles}} miles)</td></tr>
  <tr><td>Equipment</td><td>{{.Passed}} passed, {{.Failed}} flagged</td></tr>
  <tr><td>Condition</td><td>{{.Condition}}</td></tr>
  {{if .DamageReport}}<tr><td>Damage</td><td>{{.DamageReport}}</td></tr>{{end}}
  <tr><td>Supervisor</td><td>{{.SupervisorName}} &lt;{{.SupervisorEmail}}&gt;</td></tr>
</table>
`))

// Send builds and dispatches the confirmation email for the report. The
// message goes to the selected supervisor.
func (n *EmailNotifier) Send(ctx context.Context, report models.InspectionReport) error {
	if n.FunctionURL == "" {
		return channelErr("email", fmt.Errorf("mail function URL is not configured"))
	}

	passed, failed := equipmentSummary(report)
	var body bytes.Buffer
	err := emailBody.Execute(&body, map[string]interface{}{
		"ReportID":        report.ReportID,
		"DriverName":      report.Driver.Name,
		"DriverID":        report.Driver.ID,
		"VehicleName":     report.Vehicle.Name,
		"PlateNumber":     report.Vehicle.PlateNumber,
		"Date":            report.StartOfDay.Date,
		"StartTime":       report.StartOfDay.Time,
		"EndTime":         report.EndOfDay.EndTime,
		"OdometerStart":   report.StartOfDay.OdometerStart,
		"OdometerEnd":     odometerEndText(report),
		"Miles":           milesText(report),
		"Passed":          passed,
		"Failed":          failed,
		"Condition":       string(report.EndOfDay.EquipmentCondition),
		"DamageReport":    report.EndOfDay.DamageReport,
		"SupervisorName":  report.Supervisor.Name,
		"SupervisorEmail": report.Supervisor.Email,
	})
	if err != nil {
		return channelErr("email", err)
	}

	payload, err := json.Marshal(mailMessage{
		To:      report.Supervisor.Email,
		Subject: fmt.Sprintf("FleetCheck Inspection Report %s", report.ReportID),
		HTML:    body.String(),
	})
	if err != nil {
		return channelErr("email", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.FunctionURL, bytes.NewReader(payload))
	if err != nil {
		return channelErr("email", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return channelErr("email", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return channelErr("email", fmt.Errorf("mail function returned %s", resp.Status))
	}
	n.Log.WithField("report_id", report.ReportID).Info("confirmation email dispatched")
	return nil
}
