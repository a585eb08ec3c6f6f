package models

// ChecklistSemantics states what a checked box means for a checklist. The
// meaning of a true value differs between deployments, so it is carried as
// data instead of being baked into code.
type ChecklistSemantics string

const (
	// ChecklistFlagsGood: true means "inspected and working".
	ChecklistFlagsGood ChecklistSemantics = "flags_good"
	// ChecklistFlagsIssue: true means "a problem was found".
	ChecklistFlagsIssue ChecklistSemantics = "flags_issue"
)

// ChecklistItem is one named equipment-condition entry.
type ChecklistItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ChecklistDefinition is a fixed list of items plus the polarity of its
// booleans.
type ChecklistDefinition struct {
	Items     []ChecklistItem    `json:"items"`
	Semantics ChecklistSemantics `json:"semantics"`
}

// EquipmentChecklist is the fixed start-of-day/end-of-day equipment list.
var EquipmentChecklist = ChecklistDefinition{
	Semantics: ChecklistFlagsGood,
	Items: []ChecklistItem{
		{Key: "headlights", Label: "Headlights"},
		{Key: "taillights", Label: "Taillights"},
		{Key: "turnSignals", Label: "Turn Signals"},
		{Key: "brakes", Label: "Brakes"},
		{Key: "tires", Label: "Tires"},
		{Key: "mirrors", Label: "Mirrors"},
		{Key: "windshield", Label: "Windshield"},
		{Key: "horn", Label: "Horn"},
		{Key: "seatbelt", Label: "Seatbelt"},
		{Key: "plow", Label: "Plow"},
		{Key: "trailer", Label: "Trailer"},
		{Key: "hydraulics", Label: "Hydraulics"},
	},
}

// EmptyEquipment returns an all-false equipment map for the checklist.
func (d ChecklistDefinition) EmptyEquipment() map[string]bool {
	m := make(map[string]bool, len(d.Items))
	for _, item := range d.Items {
		m[item.Key] = false
	}
	return m
}

// Passed returns the keys whose value reads as "working" under the
// checklist's semantics.
func (d ChecklistDefinition) Passed(equipment map[string]bool) []string {
	return d.filter(equipment, d.Semantics == ChecklistFlagsGood)
}

// Failed returns the keys whose value reads as "problem found".
func (d ChecklistDefinition) Failed(equipment map[string]bool) []string {
	return d.filter(equipment, d.Semantics != ChecklistFlagsGood)
}

func (d ChecklistDefinition) filter(equipment map[string]bool, want bool) []string {
	var keys []string
	for _, item := range d.Items {
		if equipment[item.Key] == want {
			keys = append(keys, item.Key)
		}
	}
	return keys
}
