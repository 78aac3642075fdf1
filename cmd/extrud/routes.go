package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"extrud-backend/http-server/auth/login"
	createlogs "extrud-backend/http-server/logs/create"
	dellogs "extrud-backend/http-server/logs/delete"
	getlogs "extrud-backend/http-server/logs/get"
	restorelogs "extrud-backend/http-server/logs/restore"
	updatelogs "extrud-backend/http-server/logs/update"
	excelreport "extrud-backend/http-server/report/excel"
	getsuggestion "extrud-backend/http-server/suggestion/get"
	"extrud-backend/internal/config"
	"extrud-backend/internal/middleware/session"
	"extrud-backend/internal/service/report"
	"extrud-backend/internal/storage/mysql"
)

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage, reportService *report.Service) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Post("/api/login", login.Login(log, storage, cfg.SessionSecret, cfg.SessionTTL))
	router.Post("/api/logout", login.Logout(log, storage, cfg.SessionSecret))

	// Everything below requires a live session cookie.
	router.Group(func(r chi.Router) {
		r.Use(session.Auth(cfg.SessionSecret, storage))

		r.Post("/api/logs", createlogs.CreateLog(log, storage))
		r.Get("/api/logs", getlogs.ListLogs(log, storage))
		r.Get("/api/logs/{id}", getlogs.GetLog(log, storage))
		r.Patch("/api/logs/{id}", updatelogs.UpdateLog(log, storage))
		r.Delete("/api/logs/{id}", dellogs.SoftDeleteLog(log, storage))
		r.Post("/api/logs/{id}/restore", restorelogs.RestoreLog(log, storage))

		r.Get("/api/suggestion-data", getsuggestion.SuggestionData(log, storage))

		r.Get("/api/report/excel", excelreport.GenerateReportExcel(log, reportService))
	})

	router.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return router
}
