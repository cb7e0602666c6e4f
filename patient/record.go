// Package patient holds the patient health record shape served by the API
// and the validation that turns a raw stored entry into a Record.
package patient

// Reading is one vital-sign group. Keys are free form; values are strings,
// json.Number or nil.
type Reading map[string]interface{}

type BloodPressure struct {
	Systolic  Reading `json:"systolic"`
	Diastolic Reading `json:"diastolic"`
}

// Snapshot is a monthly observation of vital signs.
type Snapshot struct {
	Month           string        `json:"month"`
	Year            int           `json:"year"`
	BloodPressure   BloodPressure `json:"blood_pressure"`
	HeartRate       Reading       `json:"heart_rate"`
	RespiratoryRate Reading       `json:"respiratory_rate"`
	Temperature     Reading       `json:"temperature"`
}

type Diagnostic struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// Record is a patient entry. ID is not stored; it is the 1-based position of
// the entry in the collection it was loaded from and changes whenever the
// stored order does.
type Record struct {
	ID               int          `json:"id"`
	Name             string       `json:"name"`
	Gender           string       `json:"gender"`
	Age              int          `json:"age"`
	ProfilePicture   string       `json:"profile_picture"`
	DateOfBirth      string       `json:"date_of_birth"`
	PhoneNumber      string       `json:"phone_number"`
	EmergencyContact string       `json:"emergency_contact"`
	InsuranceType    string       `json:"insurance_type"`
	DiagnosisHistory []Snapshot   `json:"diagnosis_history"`
	DiagnosticList   []Diagnostic `json:"diagnostic_list"`
	LabResults       []string     `json:"lab_results"`
}
