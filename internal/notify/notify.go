// Package notify holds the manual notification dispatchers fired from the
// success screen: email confirmation, Slack webhook, spreadsheet row, and the
// MQTT fleet event feed. Channels are independent and retryable; a failure on
// one never affects the stored report or another channel.
package notify

import (
	"fmt"
	"strconv"

	"github.com/citydev/fleetcheck/internal/models"
)

// NotificationError wraps a channel failure. The report is already durable
// when dispatch runs, so these are surfaced to the operator and nothing else.
type NotificationError struct {
	Channel string
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("%s notification failed: %v", e.Channel, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

func channelErr(channel string, err error) *NotificationError {
	return &NotificationError{Channel: channel, Err: err}
}

// milesText renders the derived distance, "N/A" when the end reading was
// never entered.
func milesText(report models.InspectionReport) string {
	miles, ok := report.Distance()
	if !ok {
		return "N/A"
	}
	return strconv.Itoa(miles)
}

func odometerEndText(report models.InspectionReport) string {
	if report.EndOfDay.OdometerEnd == nil {
		return "N/A"
	}
	return strconv.Itoa(*report.EndOfDay.OdometerEnd)
}

// equipmentSummary counts checklist outcomes across both daily checklists,
// honoring the checklist polarity.
func equipmentSummary(report models.InspectionReport) (passed, failed int) {
	def := models.EquipmentChecklist
	passed = len(def.Passed(report.StartOfDay.Equipment)) + len(def.Passed(report.EndOfDay.Equipment))
	failed = len(def.Failed(report.StartOfDay.Equipment)) + len(def.Failed(report.EndOfDay.Equipment))
	return passed, failed
}
