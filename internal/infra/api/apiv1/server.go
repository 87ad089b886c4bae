// Package apiv1 exposes the pipelines and the posting queue over HTTP.
// All /api/v1 routes require a bearer JWT signed with the configured secret.
package apiv1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-job-scout/internal/domain"
	"telegram-job-scout/internal/infra/api"
	"telegram-job-scout/internal/usecase"
)

// pipelineTimeout bounds a synchronous pipeline run triggered over HTTP.
const pipelineTimeout = 5 * time.Minute

type Server struct {
	users      usecase.UserUseCase
	postings   usecase.PostingUseCase
	extraction usecase.ExtractionUseCase
	analysis   usecase.AnalysisUseCase
	search     usecase.SearchUseCase
	resume     usecase.ResumeUseCase

	jwtSecret []byte
	log       *zerolog.Logger
}

func NewServer(
	users usecase.UserUseCase,
	postings usecase.PostingUseCase,
	extraction usecase.ExtractionUseCase,
	analysis usecase.AnalysisUseCase,
	search usecase.SearchUseCase,
	resume usecase.ResumeUseCase,
	jwtSecret string,
	logger *zerolog.Logger,
) *Server {
	compLog := logger.With().Str("component", "apiv1").Logger()
	return &Server{
		users:      users,
		postings:   postings,
		extraction: extraction,
		analysis:   analysis,
		search:     search,
		resume:     resume,
		jwtSecret:  []byte(jwtSecret),
		log:        &compLog,
	}
}

// Routes builds the router with the shared middleware chain applied.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(api.TraceID(), api.RequestLog(s.log), api.Recover(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(api.Timeout(pipelineTimeout))

		r.Post("/users", s.handleRegisterUser)
		r.Get("/users", s.handleListUsers)
		r.Get("/users/{id}", s.handleGetUser)
		r.Delete("/users/{id}", s.handleDeleteUser)
		r.Get("/users/{id}/postings", s.handleUserPostings)

		r.Get("/postings", s.handleLatestPostings)
		r.Get("/postings/{id}", s.handleGetPosting)

		r.Post("/extractions", s.handleExtraction)
		r.Post("/analyses", s.handleAnalysis)
		r.Post("/searches", s.handleSearch)
		r.Post("/resumes", s.handleResumeBuild)
		r.Post("/resumes/sources", s.handleResumeSource)
	})
	return r
}

// authenticate verifies the bearer JWT. Only the signature and expiry are
// checked; there are no per-route scopes.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.jwtSecret) == 0 {
			http.Error(w, "api auth not configured", http.StatusForbidden)
			return
		}
		header := r.Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		_, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.jwtSecret, nil
		})
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type registerUserRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	u, err := s.users.RegisterOrFetch(r.Context(), req.ID, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUserPostings(w http.ResponseWriter, r *http.Request) {
	postings, err := s.postings.ListByUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, postings)
}

func (s *Server) handleLatestPostings(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	postings, err := s.postings.Latest(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, postings)
}

func (s *Server) handleGetPosting(w http.ResponseWriter, r *http.Request) {
	p, err := s.postings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

type extractionRequest struct {
	URL    string `json:"url"`
	UserID string `json:"user_id"`
}

func (s *Server) handleExtraction(w http.ResponseWriter, r *http.Request) {
	var req extractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	res, err := s.extraction.Run(r.Context(), req.URL, req.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, res)
}

type analysisRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	res, err := s.analysis.Run(r.Context(), req.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

type searchRequest struct {
	UserID  string `json:"user_id"`
	Keyword string `json:"keyword"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	res, err := s.search.Run(r.Context(), req.UserID, req.Keyword)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

type resumeBuildRequest struct {
	UserID    string `json:"user_id"`
	JobTarget string `json:"job_target"`
}

func (s *Server) handleResumeBuild(w http.ResponseWriter, r *http.Request) {
	var req resumeBuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	res, err := s.resume.Run(r.Context(), req.UserID, req.JobTarget)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

type resumeSourceRequest struct {
	UserID   string `json:"user_id"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

func (s *Server) handleResumeSource(w http.ResponseWriter, r *http.Request) {
	var req resumeSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	src, err := s.resume.UploadSource(r.Context(), req.UserID, req.Filename, []byte(req.Content))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, src)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

// writeError maps domain sentinels to HTTP status codes. Anything unmapped is
// a 500 with a generic body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrMissingUser):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNoResume), errors.Is(err, domain.ErrNoUnread):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
