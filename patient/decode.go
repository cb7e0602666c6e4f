package patient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type object map[string]json.RawMessage

// Decode checks that raw has the Record shape and returns the decoded Record.
// index is the position of raw in its collection and is only used for error
// reporting; the returned Record has no ID. Unknown keys, including a stored
// "id", are ignored.
func Decode(index int, raw json.RawMessage) (*Record, error) {
	d := &decoder{index: index}
	root, err := d.object(raw, "record")
	if err != nil {
		return nil, err
	}

	r := &Record{}
	strs := []struct {
		key string
		dst *string
	}{
		{"name", &r.Name},
		{"gender", &r.Gender},
		{"profile_picture", &r.ProfilePicture},
		{"date_of_birth", &r.DateOfBirth},
		{"phone_number", &r.PhoneNumber},
		{"emergency_contact", &r.EmergencyContact},
		{"insurance_type", &r.InsuranceType},
	}
	for _, s := range strs {
		if *s.dst, err = d.str(root, s.key, ""); err != nil {
			return nil, err
		}
	}
	if r.Age, err = d.integer(root, "age", ""); err != nil {
		return nil, err
	}

	history, err := d.array(root, "diagnosis_history", "")
	if err != nil {
		return nil, err
	}
	r.DiagnosisHistory = make([]Snapshot, 0, len(history))
	for i, item := range history {
		s, err := d.snapshot(item, fmt.Sprintf("diagnosis_history[%d]", i))
		if err != nil {
			return nil, err
		}
		r.DiagnosisHistory = append(r.DiagnosisHistory, s)
	}

	diagnostics, err := d.array(root, "diagnostic_list", "")
	if err != nil {
		return nil, err
	}
	r.DiagnosticList = make([]Diagnostic, 0, len(diagnostics))
	for i, item := range diagnostics {
		path := fmt.Sprintf("diagnostic_list[%d]", i)
		o, err := d.object(item, path)
		if err != nil {
			return nil, err
		}
		var dg Diagnostic
		if dg.Name, err = d.str(o, "name", path); err != nil {
			return nil, err
		}
		if dg.Description, err = d.str(o, "description", path); err != nil {
			return nil, err
		}
		if dg.Status, err = d.str(o, "status", path); err != nil {
			return nil, err
		}
		r.DiagnosticList = append(r.DiagnosticList, dg)
	}

	labs, err := d.array(root, "lab_results", "")
	if err != nil {
		return nil, err
	}
	r.LabResults = make([]string, 0, len(labs))
	for i, item := range labs {
		var lab string
		if err := json.Unmarshal(item, &lab); err != nil || isNull(item) {
			return nil, d.fail(fmt.Sprintf("lab_results[%d]", i), "must be a string")
		}
		r.LabResults = append(r.LabResults, lab)
	}

	return r, nil
}

type decoder struct {
	index int
}

func (d *decoder) fail(field, reason string) error {
	return &ValidationError{Index: d.index, Field: field, Reason: reason}
}

func (d *decoder) snapshot(raw json.RawMessage, path string) (Snapshot, error) {
	var s Snapshot
	o, err := d.object(raw, path)
	if err != nil {
		return s, err
	}
	if s.Month, err = d.str(o, "month", path); err != nil {
		return s, err
	}
	if s.Year, err = d.integer(o, "year", path); err != nil {
		return s, err
	}

	bpPath := join(path, "blood_pressure")
	bp, err := d.field(o, "blood_pressure", path)
	if err != nil {
		return s, err
	}
	bpObj, err := d.object(bp, bpPath)
	if err != nil {
		return s, err
	}
	if s.BloodPressure.Systolic, err = d.reading(bpObj, "systolic", bpPath); err != nil {
		return s, err
	}
	if s.BloodPressure.Diastolic, err = d.reading(bpObj, "diastolic", bpPath); err != nil {
		return s, err
	}

	if s.HeartRate, err = d.reading(o, "heart_rate", path); err != nil {
		return s, err
	}
	if s.RespiratoryRate, err = d.reading(o, "respiratory_rate", path); err != nil {
		return s, err
	}
	if s.Temperature, err = d.reading(o, "temperature", path); err != nil {
		return s, err
	}
	return s, nil
}

// field returns the raw value stored under key, failing when it is absent or null.
func (d *decoder) field(o object, key, path string) (json.RawMessage, error) {
	v, ok := o[key]
	if !ok || isNull(v) {
		return nil, d.fail(join(path, key), "is required")
	}
	return v, nil
}

func (d *decoder) object(raw json.RawMessage, path string) (object, error) {
	if !startsWith(raw, '{') {
		return nil, d.fail(path, "must be an object")
	}
	var o object
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, d.fail(path, "must be an object")
	}
	return o, nil
}

func (d *decoder) str(o object, key, path string) (string, error) {
	v, err := d.field(o, key, path)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", d.fail(join(path, key), "must be a string")
	}
	return s, nil
}

func (d *decoder) integer(o object, key, path string) (int, error) {
	v, err := d.field(o, key, path)
	if err != nil {
		return 0, err
	}
	n, ok := number(v)
	if !ok {
		return 0, d.fail(join(path, key), "must be an integer")
	}
	i, err := n.Int64()
	if err != nil {
		return 0, d.fail(join(path, key), "must be an integer")
	}
	return int(i), nil
}

func (d *decoder) array(o object, key, path string) ([]json.RawMessage, error) {
	v, err := d.field(o, key, path)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if !startsWith(v, '[') || json.Unmarshal(v, &items) != nil {
		return nil, d.fail(join(path, key), "must be a list")
	}
	return items, nil
}

// reading decodes a vital-sign group. Values must be scalar: a string, a
// number or null.
func (d *decoder) reading(o object, key, path string) (Reading, error) {
	v, err := d.field(o, key, path)
	if err != nil {
		return nil, err
	}
	p := join(path, key)
	m, err := d.object(v, p)
	if err != nil {
		return nil, err
	}
	out := make(Reading, len(m))
	for k, raw := range m {
		switch {
		case isNull(raw):
			out[k] = nil
		case startsWith(raw, '"'):
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, d.fail(join(p, k), "must be a string, number or null")
			}
			out[k] = s
		default:
			n, ok := number(raw)
			if !ok {
				return nil, d.fail(join(p, k), "must be a string, number or null")
			}
			out[k] = n
		}
	}
	return out, nil
}

func number(raw json.RawMessage) (json.Number, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	n, ok := v.(json.Number)
	return n, ok
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func startsWith(raw json.RawMessage, c byte) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == c
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
