package main

import (
	stdlog "log"
	"net/http"

	"github.com/rs/cors"

	"github.com/iryonetwork/patient-records/config"
	"github.com/iryonetwork/patient-records/logger"
	"github.com/iryonetwork/patient-records/metrics"
	"github.com/iryonetwork/patient-records/query"
)

func main() {
	config, err := config.New()
	if err != nil {
		stdlog.Fatalf("failed to get config: %v", err)
	}

	log, err := logger.New(config)
	if err != nil {
		stdlog.Fatalf("failed to set up logger: %v", err)
	}
	defer log.Sync()

	source, err := config.Source()
	if err != nil {
		log.Fatalf("failed to set up %s record source: %v", config.StoreType, err)
	}

	m := metrics.New()
	h := &handlers{
		config:  config,
		log:     log,
		query:   query.New(source, log, m),
		metrics: m,
	}

	srv := &http.Server{
		Addr:         config.APIAddr,
		Handler:      newHandler(config, h),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	log.Printf("starting HTTP server on http://%s (%s store)", config.APIAddr, source.Name())

	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("error serving HTTP: %v", err)
	}
}

// newHandler wraps the router in the CORS policy: configured origins, any
// method, any header, credentials allowed.
func newHandler(cfg *config.Config, h *handlers) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(newRouter(h))
}
