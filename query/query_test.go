package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iryonetwork/patient-records/logger"
	"github.com/iryonetwork/patient-records/metrics"
	"github.com/iryonetwork/patient-records/patient"
	"github.com/iryonetwork/patient-records/storage/records"
)

func entry(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":              name,
		"gender":            "Female",
		"age":               40,
		"profile_picture":   "https://example.com/" + name + ".png",
		"date_of_birth":     "01/01/1984",
		"phone_number":      "(415) 555-0000",
		"emergency_contact": "(415) 555-0001",
		"insurance_type":    "Premier Auto Corporation",
		"diagnosis_history": []interface{}{
			map[string]interface{}{
				"month": "February",
				"year":  2024,
				"blood_pressure": map[string]interface{}{
					"systolic":  map[string]interface{}{"value": 120, "levels": "Normal"},
					"diastolic": map[string]interface{}{"value": 80, "levels": "Normal"},
				},
				"heart_rate":       map[string]interface{}{"value": 70, "levels": "Normal"},
				"respiratory_rate": map[string]interface{}{"value": 16, "levels": "Normal"},
				"temperature":      map[string]interface{}{"value": 98.1, "levels": "Normal"},
			},
		},
		"diagnostic_list": []interface{}{
			map[string]interface{}{"name": "Asthma", "description": "Recurrent episodes", "status": "Cured"},
		},
		"lab_results": []interface{}{"Blood Tests"},
	}
}

func writeStore(t *testing.T, entries ...interface{}) string {
	t.Helper()
	if entries == nil {
		entries = []interface{}{}
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "patients_data.json")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func newService(path string) *Service {
	return New(records.NewFileSource(path), logger.Nop(), nil)
}

func TestScenarioThreeRecords(t *testing.T) {
	s := newService(writeStore(t, entry("A"), entry("B"), entry("C")))
	ctx := context.Background()

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, name := range []string{"A", "B", "C"} {
		assert.Equal(t, i+1, list[i].ID)
		assert.Equal(t, name, list[i].Name)
	}

	r, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, r.ID)
	assert.Equal(t, "B", r.Name)
	assert.Equal(t, list[1], r)

	for _, id := range []int{4, 0, -1} {
		r, err := s.Get(ctx, id)
		assert.Nil(t, r)
		var nf *NotFoundError
		require.True(t, errors.As(err, &nf), "id %d", id)
		assert.Equal(t, id, nf.ID)
	}
}

func TestScenarioEmptyStore(t *testing.T) {
	s := newService(writeStore(t))

	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	out, err := json.Marshal(list)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))

	_, err = s.Get(context.Background(), 1)
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestIdsAreContiguous(t *testing.T) {
	var entries []interface{}
	for i := 0; i < 25; i++ {
		entries = append(entries, entry(fmt.Sprintf("P%02d", i)))
	}
	s := newService(writeStore(t, entries...))

	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, len(entries))
	for i, r := range list {
		assert.Equal(t, i+1, r.ID)

		got, err := s.Get(context.Background(), r.ID)
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
}

func TestListIsIdempotent(t *testing.T) {
	s := newService(writeStore(t, entry("A"), entry("B")))

	first, err := s.List(context.Background())
	require.NoError(t, err)
	second, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStoredIDIsOverwritten(t *testing.T) {
	a := entry("A")
	a["id"] = 99
	s := newService(writeStore(t, a))

	r, err := s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, r.ID)
}

func TestIdsFollowStoredOrder(t *testing.T) {
	path := writeStore(t, entry("A"), entry("B"))
	s := newService(path)

	r, err := s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "A", r.Name)

	data, err := json.Marshal([]interface{}{entry("B"), entry("A")})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))

	r, err = s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "B", r.Name)
}

func TestMissingStore(t *testing.T) {
	s := newService(filepath.Join(t.TempDir(), "patients_data.json"))

	list, err := s.List(context.Background())
	assert.Nil(t, list)
	var lerr *records.LoadError
	assert.True(t, errors.As(err, &lerr))

	r, err := s.Get(context.Background(), 1)
	assert.Nil(t, r)
	assert.True(t, errors.As(err, &lerr))
}

func TestInvalidRecord(t *testing.T) {
	bad := entry("B")
	bad["age"] = "forty"
	s := newService(writeStore(t, entry("A"), bad, entry("C")))

	list, err := s.List(context.Background())
	assert.Nil(t, list)
	var verr *patient.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 1, verr.Index)
	assert.Equal(t, "age", verr.Field)

	// lookups of other entries are unaffected
	r, err := s.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "C", r.Name)

	_, err = s.Get(context.Background(), 2)
	require.True(t, errors.As(err, &verr))
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	s := New(records.NewFileSource(writeStore(t, entry("A"))), logger.Nop(), m)

	_, err := s.Get(context.Background(), 7)
	require.Error(t, err)
	_, err = s.Get(context.Background(), 1)
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(m.Registry(), "patient_records_query_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = testutil.GatherAndCount(m.Registry(), "patient_records_load_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
