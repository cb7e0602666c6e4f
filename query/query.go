// Package query answers the two patient queries: list every record, and fetch
// one record by identifier.
//
// Identifiers are not stored. Each query loads the whole collection and gives
// every entry the id index+1, so ids shift whenever the stored order changes,
// and two queries only agree when the store did not change in between.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iryonetwork/patient-records/logger"
	"github.com/iryonetwork/patient-records/metrics"
	"github.com/iryonetwork/patient-records/patient"
	"github.com/iryonetwork/patient-records/storage/records"
)

// NotFoundError reports an id outside [1, len(collection)].
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("patient %d not found", e.ID)
}

type Service struct {
	source  records.Source
	log     *logger.Log
	metrics *metrics.Metrics
}

// New returns a Service reading from source. m may be nil.
func New(source records.Source, log *logger.Log, m *metrics.Metrics) *Service {
	return &Service{source: source, log: log, metrics: m}
}

// List returns every record, in stored order, with ids 1..n. An entry that
// does not have the record shape fails the whole call with a
// *patient.ValidationError.
func (s *Service) List(ctx context.Context) ([]*patient.Record, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*patient.Record, 0, len(entries))
	for i, entry := range entries {
		r, err := s.decode(i, entry)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	s.log.Debugf("Listed %d patient records", len(out))
	return out, nil
}

// Get returns the record with the given id. Only that entry is validated.
func (s *Service) Get(ctx context.Context, id int) (*patient.Record, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if id < 1 || id > len(entries) {
		s.countError(metrics.KindNotFound)
		return nil, &NotFoundError{ID: id}
	}
	return s.decode(id-1, entries[id-1])
}

func (s *Service) load(ctx context.Context) ([]json.RawMessage, error) {
	start := time.Now()
	entries, err := s.source.Load(ctx)
	if s.metrics != nil {
		s.metrics.ObserveLoad(s.source.Name(), time.Since(start))
	}
	if err != nil {
		s.log.Errorf("Failed to load patient data from %s source; %v", s.source.Name(), err)
		s.countError(metrics.KindLoad)
		return nil, err
	}
	return entries, nil
}

// decode validates the entry at index and attaches its id.
func (s *Service) decode(index int, entry json.RawMessage) (*patient.Record, error) {
	r, err := patient.Decode(index, entry)
	if err != nil {
		var verr *patient.ValidationError
		if errors.As(err, &verr) {
			s.log.Errorf("Invalid patient record; %v", err)
			s.countError(metrics.KindValidation)
		}
		return nil, err
	}
	r.ID = index + 1
	return r, nil
}

func (s *Service) countError(kind string) {
	if s.metrics != nil {
		s.metrics.QueryError(kind)
	}
}
