// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/pollbox/pollbox/cliparse"
	"github.com/pollbox/pollbox/handlers"
	"github.com/pollbox/pollbox/mailer"
	"github.com/pollbox/pollbox/middleware"
	"github.com/pollbox/pollbox/provision"
	"github.com/pollbox/pollbox/store"
	"github.com/pollbox/pollbox/voting"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	sqlStore := store.New(db)

	var mail mailer.Sender = mailer.Log{}
	if cfg.SMTPAddr != "" {
		mail = &mailer.SMTP{
			Addr:     cfg.SMTPAddr,
			From:     cfg.SMTPFrom,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		}
	}

	orchestrator := voting.NewOrchestrator(sqlStore, sqlStore, sqlStore, []byte(cfg.JWTSecret))
	provisioner := provision.NewService(sqlStore, mail, cfg.FrontendURL)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(sqlStore, cfg)
	pollHandler := handlers.NewPollHandler(sqlStore, cfg)
	voteHandler := handlers.NewVoteHandler(sqlStore, orchestrator, cfg)
	voterHandler := handlers.NewVoterHandler(sqlStore, provisioner, cfg)
	resultsHandler := handlers.NewResultsHandler(sqlStore)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Creator accounts (public)
	mux.HandleFunc("POST /register", middleware.WithLogging(authHandler.Register))
	mux.HandleFunc("POST /login", middleware.WithLogging(authHandler.Login))

	// Poll management
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("GET /polls/{id}/options", middleware.WithLogging(pollHandler.ListOptions))

	// Roster upload (creator only)
	mux.HandleFunc("POST /polls/{id}/voters", middleware.WithLogging(voterHandler.UploadVoters))

	// Voting operations (public)
	mux.HandleFunc("POST /polls/{id}/vote", middleware.WithLogging(voteHandler.CastVote))
	mux.HandleFunc("POST /voter-login", middleware.WithLogging(voteHandler.VoterLogin))

	// Results retrieval (public)
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollbox API v1"))
	})

	return mux
}
