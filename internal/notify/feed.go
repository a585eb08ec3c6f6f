package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/citydev/fleetcheck/internal/models"
)

// FeedPublisher pushes a compact summary of each submitted inspection to an
// MQTT topic for fleet dashboards. The feed is optional: a nil publisher is
// valid and publishes nothing.
type FeedPublisher struct {
	client mqtt.Client
	topic  string
	log    log.FieldLogger
}

// NewFeedPublisher connects to the broker and returns a publisher. An empty
// broker URL disables the feed.
func NewFeedPublisher(brokerURL, topic string, logger log.FieldLogger) (*FeedPublisher, error) {
	if brokerURL == "" {
		return nil, nil
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	if topic == "" {
		topic = "fleetcheck/inspections"
	}

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID("fleetcheck-feed").
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to broker %s: %w", brokerURL, token.Error())
	}
	logger.WithField("broker", brokerURL).Info("fleet event feed connected")
	return &FeedPublisher{client: client, topic: topic, log: logger}, nil
}

type feedEvent struct {
	ReportID    string    `json:"report_id"`
	DriverName  string    `json:"driver_name"`
	Vehicle     string    `json:"vehicle"`
	PlateNumber string    `json:"plate_number"`
	Date        string    `json:"date"`
	Miles       *int      `json:"miles,omitempty"`
	Condition   string    `json:"condition"`
	Deferred    bool      `json:"deferred"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Publish sends the report summary. Safe on a nil publisher.
func (p *FeedPublisher) Publish(report models.InspectionReport) error {
	if p == nil {
		return nil
	}

	event := feedEvent{
		ReportID:    report.ReportID,
		DriverName:  report.Driver.Name,
		Vehicle:     report.Vehicle.Name,
		PlateNumber: report.Vehicle.PlateNumber,
		Date:        report.StartOfDay.Date,
		Condition:   string(report.EndOfDay.EquipmentCondition),
		Deferred:    report.Error != "",
		SubmittedAt: report.SubmittedAt,
	}
	if miles, ok := report.Distance(); ok {
		event.Miles = &miles
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return channelErr("feed", err)
	}
	if token := p.client.Publish(p.topic, 0, false, payload); token.Wait() && token.Error() != nil {
		return channelErr("feed", token.Error())
	}
	p.log.WithField("report_id", report.ReportID).Debug("feed event published")
	return nil
}

// Close disconnects from the broker. Safe on a nil publisher.
func (p *FeedPublisher) Close() {
	if p == nil {
		return
	}
	p.client.Disconnect(250)
}
