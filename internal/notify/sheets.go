package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/citydev/fleetcheck/internal/models"
)

// SheetsNotifier appends the report as a flat row to a spreadsheet through
// its bound Apps Script web app.
type SheetsNotifier struct {
	Client *http.Client
	Log    log.FieldLogger
}

// NewSheetsNotifier creates a spreadsheet notifier.
func NewSheetsNotifier(logger log.FieldLogger) *SheetsNotifier {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &SheetsNotifier{
		Client: &http.Client{Timeout: 15 * time.Second},
		Log:    logger,
	}
}

var sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// ExecURL derives the Apps Script exec endpoint from a spreadsheet URL.
func ExecURL(sheetURL string) (string, error) {
	match := sheetIDPattern.FindStringSubmatch(sheetURL)
	if match == nil {
		return "", fmt.Errorf("invalid spreadsheet URL: no /spreadsheets/d/<id> segment")
	}
	return fmt.Sprintf("https://script.google.com/macros/s/%s/exec", match[1]), nil
}

// Send posts one url-encoded row of named fields to the sheet's web app.
func (n *SheetsNotifier) Send(ctx context.Context, sheetURL string, report models.InspectionReport) error {
	execURL, err := ExecURL(sheetURL)
	if err != nil {
		return channelErr("sheets", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, execURL,
		strings.NewReader(rowData(report).Encode()))
	if err != nil {
		return channelErr("sheets", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.Client.Do(req)
	if err != nil {
		return channelErr("sheets", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return channelErr("sheets", fmt.Errorf("sheet web app returned %s", resp.Status))
	}
	n.Log.WithField("report_id", report.ReportID).Info("report row sent to spreadsheet")
	return nil
}

func rowData(report models.InspectionReport) url.Values {
	def := models.EquipmentChecklist
	passed := strings.Join(def.Passed(report.StartOfDay.Equipment), ", ")
	if passed == "" {
		passed = "None checked"
	}
	failed := strings.Join(def.Failed(report.StartOfDay.Equipment), ", ")
	if failed == "" {
		failed = "All passed"
	}

	miles := "0"
	if m, ok := report.Distance(); ok {
		miles = strconv.Itoa(m)
	}

	row := url.Values{}
	row.Set("timestamp", time.Now().Format("2006-01-02 15:04:05"))
	row.Set("reportId", report.ReportID)
	row.Set("driverName", report.Driver.Name)
	row.Set("driverId", orNA(report.Driver.ID))
	row.Set("vehicleName", orNA(report.Vehicle.Name))
	row.Set("date", report.StartOfDay.Date)
	row.Set("startTime", report.StartOfDay.Time)
	row.Set("endTime", orNA(report.EndOfDay.EndTime))
	row.Set("startOdometer", strconv.Itoa(report.StartOfDay.OdometerStart))
	row.Set("endOdometer", odometerEndText(report))
	row.Set("totalMiles", miles)
	row.Set("equipmentPassed", passed)
	row.Set("equipmentFailed", failed)
	row.Set("startNotes", orNone(report.StartOfDay.Notes))
	row.Set("endNotes", orNone(report.EndOfDay.Notes))
	row.Set("damageReport", orNone(report.EndOfDay.DamageReport))
	row.Set("supervisorName", orNA(report.Supervisor.Name))
	row.Set("supervisorEmail", orNA(report.Supervisor.Email))
	row.Set("supervisorDepartment", orNA(report.Supervisor.Department))
	row.Set("submittedAt", report.SubmittedAt.Format(time.RFC3339))
	return row
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

func orNone(value string) string {
	if value == "" {
		return "None"
	}
	return value
}
