package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// The simulator drives complete inspection wizard runs against a FleetCheck
// server: sign-in, both checklists, signature, supervisor, submit. Useful
// for demos and for exercising the local-fallback path by pointing it at a
// server with no database.

type driver struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type vehicle struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	PlateNumber string `json:"plate_number"`
	Department  string `json:"department"`
}

type supervisor struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

var driverNames = []string{
	"Jane Doe", "Mike Torres", "Aisha Brown", "Tom Novak",
	"Grace Kim", "Luis Ortega", "Priya Shah", "Dan Kowalski",
}

var vehicles = []vehicle{
	{Name: "Truck 7", Type: "Truck", PlateNumber: "ON-1207", Department: "Public Works"},
	{Name: "Van 2", Type: "Van", PlateNumber: "ON-0452", Department: "Parks"},
	{Name: "Plow 3", Type: "Plow", PlateNumber: "ON-3310", Department: "Roads"},
	{Name: "Sweeper 1", Type: "Sweeper", PlateNumber: "ON-8821", Department: "Roads"},
	{Name: "Pickup 12", Type: "Pickup", PlateNumber: "ON-5566", Department: "Water"},
}

var supervisors = []supervisor{
	{Name: "Sam Lee", Email: "sam.lee@city.example", Department: "Public Works"},
	{Name: "Rita Gomez", Email: "rita.gomez@city.example", Department: "Roads"},
	{Name: "Paul Cheng", Email: "paul.cheng@city.example", Department: "Parks"},
}

var equipmentKeys = []string{
	"headlights", "taillights", "turnSignals", "brakes", "tires", "mirrors",
	"windshield", "horn", "seatbelt", "plow", "trailer", "hydraulics",
}

var conditions = []string{"excellent", "good", "good", "fair", "poor"}

func randomDriver() driver {
	return driver{
		Name: driverNames[rand.Intn(len(driverNames))],
		ID:   fmt.Sprintf("D-%03d", rand.Intn(900)+100),
	}
}

// randomEquipment checks most items; a small failure rate keeps the
// supervisor notifications interesting.
func randomEquipment() map[string]bool {
	equipment := make(map[string]bool, len(equipmentKeys))
	for _, key := range equipmentKeys {
		equipment[key] = rand.Float64() > 0.1
	}
	return equipment
}

var authToken string

func authorizedPost(url string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func postStep(apiURL, sessionID, step string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", step, err)
	}
	url := fmt.Sprintf("%s/inspections/%s/%s", apiURL, sessionID, step)
	resp, err := authorizedPost(url, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("post %s: %w", step, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", step, resp.StatusCode)
	}
	return nil
}

func createSession(apiURL string) (string, error) {
	resp, err := authorizedPost(apiURL+"/inspections", bytes.NewBuffer(nil))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("session creation failed with status: %d", resp.StatusCode)
	}
	var created struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode session response: %w", err)
	}
	return created.SessionID, nil
}

func runInspection(apiURL string) error {
	sessionID, err := createSession(apiURL)
	if err != nil {
		return err
	}

	d := randomDriver()
	v := vehicles[rand.Intn(len(vehicles))]
	sup := supervisors[rand.Intn(len(supervisors))]
	odometerStart := 1000 + rand.Intn(90000)
	miles := 20 + rand.Intn(180)
	now := time.Now()

	if err := postStep(apiURL, sessionID, "signin", d); err != nil {
		return err
	}
	if err := postStep(apiURL, sessionID, "start-of-day", map[string]interface{}{
		"vehicle":       v,
		"date":          now.Format("2006-01-02"),
		"time":          now.Format("15:04"),
		"odometerStart": odometerStart,
		"equipment":     randomEquipment(),
	}); err != nil {
		return err
	}
	if err := postStep(apiURL, sessionID, "end-of-day", map[string]interface{}{
		"endTime":            now.Add(8 * time.Hour).Format("15:04"),
		"odometerEnd":        odometerStart + miles,
		"equipmentCondition": conditions[rand.Intn(len(conditions))],
		"equipment":          randomEquipment(),
	}); err != nil {
		return err
	}
	if err := postStep(apiURL, sessionID, "signature", map[string]string{
		"signature": "data:image/png;base64,simulated",
	}); err != nil {
		return err
	}
	if err := postStep(apiURL, sessionID, "submit", map[string]interface{}{
		"supervisor": sup,
	}); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"driver":  d.Name,
		"vehicle": v.Name,
		"miles":   miles,
	}).Info("Inspection submitted")
	return nil
}

func main() {
	authToken = os.Getenv("SIM_AUTH_TOKEN")

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	count := 10
	if val := os.Getenv("SIM_INSPECTIONS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			count = n
		}
	}

	interval := 2 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	log.WithFields(log.Fields{
		"api_url":     apiURL,
		"inspections": count,
		"interval":    interval,
	}).Info("Starting inspection simulation")

	failures := 0
	for i := 0; i < count; i++ {
		if err := runInspection(apiURL); err != nil {
			failures++
			log.WithError(err).Error("Inspection run failed")
		}
		time.Sleep(interval)
	}

	log.WithFields(log.Fields{
		"completed": count - failures,
		"failed":    failures,
	}).Info("Simulation finished")
}
