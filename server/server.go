package server

import (
	"crypto/tls"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mentora/ragline/config"
	"github.com/mentora/ragline/handlers"
	"github.com/mentora/ragline/pipeline"
	"github.com/mentora/ragline/services/ingest_service"
	"github.com/mentora/ragline/services/vector_store"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"
)

func SetupRoutes(orchestrator *pipeline.Orchestrator, processor *ingest_service.Processor, store vector_store.VectorStore, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()

	queryHandler := handlers.NewQueryHandler(orchestrator, logger)
	r.HandleFunc("/api/query", queryHandler.ProcessQuery).Methods("POST")

	documentHandler := handlers.NewDocumentHandler(processor, store, logger)
	r.HandleFunc("/api/documents", documentHandler.UploadDocument).Methods("POST")
	r.HandleFunc("/api/collections/{collection}/documents", documentHandler.ListDocuments).Methods("GET")
	r.HandleFunc("/api/collections/{collection}/documents/{file_id}", documentHandler.DeleteDocument).Methods("DELETE")

	r.HandleFunc("/healthz", handlers.HealthCheck).Methods("GET")

	return r
}

// ServeProduction terminates TLS with certificates obtained through ACME.
// Port 80 only answers challenges and redirects to HTTPS.
func ServeProduction(n *negroni.Negroni, cfg config.Config) {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(cfg.Domains...),
		Cache:      autocert.DirCache(cfg.CertCacheDir),
	}

	go func() {
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	tlsConfig := &tls.Config{
		GetCertificate:           autocertManager.GetCertificate,
		PreferServerCipherSuites: true,
		CurvePreferences:         []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPSPort,
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	err := srv.ListenAndServeTLS("", "") // Key and cert provided automatically by autocert.
	log.Fatal(err)
}

// ServeDevelopment starts a plain HTTP server.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
