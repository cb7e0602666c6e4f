package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/segmentio/ksuid"

	"github.com/iryonetwork/patient-records/config"
	"github.com/iryonetwork/patient-records/logger"
	"github.com/iryonetwork/patient-records/metrics"
	"github.com/iryonetwork/patient-records/patient"
	"github.com/iryonetwork/patient-records/query"
	"github.com/iryonetwork/patient-records/storage/records"
)

const requestIDHeader = "X-Request-Id"

// unmatchedRoute labels requests that matched no route.
const unmatchedRoute = "unmatched"

// Inbound request ids are kept only when they look like an id; anything else
// is replaced so it cannot flood or forge log lines.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

type handlers struct {
	config  *config.Config
	log     *logger.Log
	query   *query.Service
	metrics *metrics.Metrics
}

func newRouter(h *handlers) *mux.Router {
	router := mux.NewRouter()
	router.Use(h.instrument)
	// middleware only runs on matched routes
	router.NotFoundHandler = h.instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorJson(w, 404, "Not found")
	}))
	router.MethodNotAllowedHandler = h.instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorJson(w, 405, "Method not allowed")
	}))

	router.HandleFunc("/patients", h.listHandler).Methods("GET")
	router.HandleFunc("/patient/{id}", h.getHandler).Methods("GET")
	router.Handle("/metrics", h.metrics.Handler()).Methods("GET")

	return router
}

func (h *handlers) listHandler(w http.ResponseWriter, r *http.Request) {
	log := h.requestLog(r)
	patients, err := h.query.List(r.Context())
	if err != nil {
		h.writeQueryError(w, log, err)
		return
	}
	log.Debugf("API:: Sending %d patients", len(patients))
	writeJson(w, 200, patients)
}

func (h *handlers) getHandler(w http.ResponseWriter, r *http.Request) {
	log := h.requestLog(r)
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if errors.Is(err, strconv.ErrRange) {
		// an integer too large for int is past the end of any collection
		log.Debugf("API:: patient id %s out of range", mux.Vars(r)["id"])
		h.metrics.QueryError(metrics.KindNotFound)
		writeErrorJson(w, 404, "Patient not found")
		return
	}
	if err != nil {
		writeErrorJson(w, 400, "Patient id must be an integer")
		return
	}

	p, err := h.query.Get(r.Context(), id)
	if err != nil {
		h.writeQueryError(w, log, err)
		return
	}
	log.Debugf("API:: Sending patient %d", id)
	writeJson(w, 200, p)
}

// writeQueryError keeps "the store is broken" apart from "no such patient".
func (h *handlers) writeQueryError(w http.ResponseWriter, log *logger.Log, err error) {
	var (
		nf   *query.NotFoundError
		lerr *records.LoadError
		verr *patient.ValidationError
	)
	switch {
	case errors.As(err, &nf):
		log.Debugf("API:: %v", err)
		writeErrorJson(w, 404, "Patient not found")
	case errors.As(err, &lerr), errors.As(err, &verr):
		log.Printf("API:: query failed; %v", err)
		writeErrorJson(w, 500, err.Error())
	default:
		log.Printf("API:: unexpected query error; %v", err)
		writeErrorJson(w, 500, "Internal server error")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument tags every request with an id and counts it by route and status.
func (h *handlers) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if !validRequestID.MatchString(id) {
			id = ksuid.New().String()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, code: 200}
		next.ServeHTTP(rec, r)

		route := unmatchedRoute
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		h.metrics.ObserveRequest(route, rec.code)
	})
}

func (h *handlers) requestLog(r *http.Request) *logger.Log {
	return h.log.With("request_id", r.Header.Get(requestIDHeader))
}

func writeJson(w http.ResponseWriter, statuscode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statuscode)
	json.NewEncoder(w).Encode(v)
}

func writeErrorJson(w http.ResponseWriter, statuscode int, err string) {
	r := make(map[string]string)
	r["error"] = err
	writeJson(w, statuscode, r)
}
