package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"quiz-results-service/internal/app"
	"quiz-results-service/internal/domain"
)

// Handler exposes submission, cached result queries and analytics over JSON.
type Handler struct {
	submissions *app.SubmissionService
	queries     *app.ResultQueryService
	analytics   *app.AnalyticsService
	log         *slog.Logger
}

func NewHandler(submissions *app.SubmissionService, queries *app.ResultQueryService, analytics *app.AnalyticsService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{submissions: submissions, queries: queries, analytics: analytics, log: logger}
}

// Register mounts the REST routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /results", h.withUser(h.passQuiz))
	mux.HandleFunc("GET /results/me", h.withUser(h.myResults))
	mux.HandleFunc("GET /companies/{company}/results", h.withUser(h.companyResults))
	mux.HandleFunc("GET /companies/{company}/quizzes/{quizID}/results", h.withUser(h.quizResults))
	mux.HandleFunc("GET /companies/{company}/users/{userID}/quizzes/{quizID}/result", h.withUser(h.userQuizResult))

	mux.HandleFunc("GET /analytics/me/average", h.withUser(h.myAverage))
	mux.HandleFunc("GET /analytics/companies/{companyID}/averages", h.withUser(h.companyAverages))
	mux.HandleFunc("GET /analytics/companies/{companyID}/users/{userID}/quizzes", h.withUser(h.userQuizSummaries))
	mux.HandleFunc("GET /analytics/companies/{companyID}/users/{userID}/quizzes/recent", h.withUser(h.userRecentAverages))
	mux.HandleFunc("GET /analytics/companies/{companyID}/recent", h.withUser(h.recentResults))
	mux.HandleFunc("GET /analytics/companies/{companyID}/last-attempts", h.withUser(h.lastAttempts))
}

type userHandlerFunc func(w http.ResponseWriter, r *http.Request, userID int64)

func (h *Handler) withUser(next userHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := principal(r)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		next(w, r, userID)
	}
}

func (h *Handler) passQuiz(w http.ResponseWriter, r *http.Request, userID int64) {
	var req domain.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, domain.InvalidInput("malformed submission body"))
		return
	}
	result, err := h.submissions.Pass(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) myResults(w http.ResponseWriter, r *http.Request, userID int64) {
	entries, err := h.queries.MyResults(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) companyResults(w http.ResponseWriter, r *http.Request, userID int64) {
	entries, err := h.queries.CompanyResults(r.Context(), userID, r.PathValue("company"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) quizResults(w http.ResponseWriter, r *http.Request, userID int64) {
	quizID, err := pathInt(r, "quizID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	company := r.PathValue("company")
	if wantsCSV(r) {
		h.streamCSV(w, func() error {
			return h.queries.ExportQuizCSV(r.Context(), w, userID, company, quizID)
		})
		return
	}
	entries, err := h.queries.QuizResults(r.Context(), userID, company, quizID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) userQuizResult(w http.ResponseWriter, r *http.Request, requesterID int64) {
	userID, err := pathInt(r, "userID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	quizID, err := pathInt(r, "quizID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	company := r.PathValue("company")
	if wantsCSV(r) {
		h.streamCSV(w, func() error {
			return h.queries.ExportUserQuizCSV(r.Context(), w, requesterID, company, userID, quizID)
		})
		return
	}
	entries, err := h.queries.UserQuizResult(r.Context(), requesterID, company, userID, quizID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) myAverage(w http.ResponseWriter, r *http.Request, userID int64) {
	avg, err := h.analytics.UserAverage(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.UserAverage{UserID: userID, Average: avg})
}

func (h *Handler) companyAverages(w http.ResponseWriter, r *http.Request, userID int64) {
	companyID, err := pathInt(r, "companyID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	out, err := h.analytics.CompanyUserAverages(r.Context(), userID, companyID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) userQuizSummaries(w http.ResponseWriter, r *http.Request, requesterID int64) {
	companyID, err := pathInt(r, "companyID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	userID, err := pathInt(r, "userID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	out, err := h.analytics.UserQuizSummaries(r.Context(), requesterID, userID, companyID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) recentResults(w http.ResponseWriter, r *http.Request, userID int64) {
	companyID, err := pathInt(r, "companyID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	window, err := windowParam(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	out, err := h.analytics.CompanyResultsSince(r.Context(), userID, companyID, window)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) userRecentAverages(w http.ResponseWriter, r *http.Request, requesterID int64) {
	companyID, err := pathInt(r, "companyID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	userID, err := pathInt(r, "userID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	window, err := windowParam(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	out, err := h.analytics.UserQuizAveragesSince(r.Context(), requesterID, userID, companyID, window)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// windowParam reads the optional ?window= look-back.
func windowParam(r *http.Request) (time.Duration, error) {
	raw := r.URL.Query().Get("window")
	if raw == "" {
		return app.DefaultRecentWindow, nil
	}
	window, err := time.ParseDuration(raw)
	if err != nil || window <= 0 {
		return 0, domain.InvalidInput("window must be a positive duration")
	}
	return window, nil
}

func (h *Handler) lastAttempts(w http.ResponseWriter, r *http.Request, userID int64) {
	companyID, err := pathInt(r, "companyID")
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	out, err := h.analytics.CompanyLastAttempts(r.Context(), userID, companyID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func wantsCSV(r *http.Request) bool {
	return r.URL.Query().Get("format") == "csv"
}

// streamCSV sets CSV headers and runs export. Errors raised before the first
// write are still reported as JSON.
func (h *Handler) streamCSV(w http.ResponseWriter, export func() error) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="results.csv"`)
	if err := export(); err != nil {
		w.Header().Del("Content-Disposition")
		writeError(w, h.log, err)
	}
}
