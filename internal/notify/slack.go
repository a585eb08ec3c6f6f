package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/citydev/fleetcheck/internal/models"
)

// SlackNotifier posts the inspection summary to an incoming-webhook URL.
type SlackNotifier struct {
	Client *http.Client
	Log    log.FieldLogger
}

// NewSlackNotifier creates a Slack notifier.
func NewSlackNotifier(logger log.FieldLogger) *SlackNotifier {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &SlackNotifier{
		Client: &http.Client{Timeout: 15 * time.Second},
		Log:    logger,
	}
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Color  string       `json:"color,omitempty"`
	Title  string       `json:"title,omitempty"`
	Fields []slackField `json:"fields,omitempty"`
}

type slackMessage struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

// Send validates the webhook URL and posts the report summary. Only real
// Slack incoming-webhook hosts are accepted; the check runs before any
// request leaves the process.
func (n *SlackNotifier) Send(ctx context.Context, webhookURL string, report models.InspectionReport) error {
	parsed, err := url.Parse(webhookURL)
	if err != nil || parsed.Host != "hooks.slack.com" {
		return channelErr("slack", fmt.Errorf("invalid Slack webhook URL: host must be hooks.slack.com"))
	}

	payload, err := json.Marshal(n.message(report))
	if err != nil {
		return channelErr("slack", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return channelErr("slack", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return channelErr("slack", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return channelErr("slack", fmt.Errorf("slack returned %s", resp.Status))
	}
	n.Log.WithField("report_id", report.ReportID).Info("report sent to Slack")
	return nil
}

func (n *SlackNotifier) message(report models.InspectionReport) slackMessage {
	def := models.EquipmentChecklist
	passed := strings.Join(def.Passed(report.StartOfDay.Equipment), ", ")
	if passed == "" {
		passed = "None"
	}
	failed := strings.Join(def.Failed(report.StartOfDay.Equipment), ", ")
	color := "warning"
	if failed == "" {
		failed = "All passed"
		color = "good"
	}

	msg := slackMessage{
		Text: fmt.Sprintf("New Fleet Inspection Report - %s", report.ReportID),
		Attachments: []slackAttachment{{
			Color: color,
			Fields: []slackField{
				{
					Title: "Driver Information",
					Value: fmt.Sprintf("*Name:* %s\n*ID:* %s\n*Vehicle:* %s",
						report.Driver.Name, report.Driver.ID, report.Vehicle.Name),
					Short: true,
				},
				{
					Title: "Inspection Details",
					Value: fmt.Sprintf("*Date:* %s\n*Time:* %s\n*Report ID:* %s",
						report.StartOfDay.Date, report.StartOfDay.Time, report.ReportID),
					Short: true,
				},
				{
					Title: "Odometer Reading",
					Value: fmt.Sprintf("*Start:* %s\n*End:* %s\n*Miles:* %s",
						strconv.Itoa(report.StartOfDay.OdometerStart), odometerEndText(report), milesText(report)),
					Short: true,
				},
				{
					Title: "Equipment Status",
					Value: fmt.Sprintf("*Passed:* %s\n*Failed:* %s", passed, failed),
					Short: true,
				},
			},
		}},
	}

	var notes []slackField
	if report.StartOfDay.Notes != "" {
		notes = append(notes, slackField{Title: "Start Notes", Value: report.StartOfDay.Notes})
	}
	if report.EndOfDay.Notes != "" {
		notes = append(notes, slackField{Title: "End Notes", Value: report.EndOfDay.Notes})
	}
	if report.EndOfDay.DamageReport != "" {
		notes = append(notes, slackField{Title: "Damage Report", Value: report.EndOfDay.DamageReport})
	}
	if len(notes) > 0 {
		msg.Attachments = append(msg.Attachments, slackAttachment{
			Color: "info", Title: "Additional Notes", Fields: notes,
		})
	}

	if report.Supervisor.Valid() {
		msg.Attachments = append(msg.Attachments, slackAttachment{
			Color: "info",
			Title: "Supervisor Information",
			Fields: []slackField{{
				Title: "Assigned Supervisor",
				Value: fmt.Sprintf("*Name:* %s\n*Email:* %s\n*Department:* %s",
					report.Supervisor.Name, report.Supervisor.Email, report.Supervisor.Department),
			}},
		})
	}
	return msg
}
