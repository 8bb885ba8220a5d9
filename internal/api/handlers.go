package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/socialchef/recipegen/internal/config"
	"github.com/socialchef/recipegen/internal/errors"
	"github.com/socialchef/recipegen/internal/page"
	"github.com/socialchef/recipegen/internal/sentry"
	"github.com/socialchef/recipegen/internal/services/recipe"
	"github.com/socialchef/recipegen/internal/services/transcription"
	"github.com/socialchef/recipegen/internal/validation"
)

const maxRequestBody = 1 << 20

// RecipeGenerator produces recipe text for a generation request.
type RecipeGenerator interface {
	GenerateRecipe(ctx context.Context, params recipe.Params) (string, error)
}

// VideoExtractor turns a cooking video URL into steps and ingredients.
type VideoExtractor interface {
	Extract(ctx context.Context, videoURL string) (*transcription.Extraction, error)
}

type Server struct {
	cfg       *config.Config
	generator RecipeGenerator
	extractor VideoExtractor
}

func NewServer(cfg *config.Config, generator RecipeGenerator, extractor VideoExtractor) *Server {
	return &Server{
		cfg:       cfg,
		generator: generator,
		extractor: extractor,
	}
}

type GenerateRecipeResponse struct {
	Recipe string `json:"recipe"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) HandleGenerateRecipe(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		s.writeError(w, r, errors.NewValidationError("Invalid request body", "INVALID_BODY", "Send a JSON object"))
		return
	}

	params, err := recipe.DecodeParams(body)
	if err != nil {
		s.writeError(w, r, errors.NewValidationError(err.Error(), "INVALID_PARAMS", "servings and time must be whole numbers"))
		return
	}

	text, err := s.generator.GenerateRecipe(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, GenerateRecipeResponse{Recipe: text})
}

func (s *Server) HandleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, page.HomeTemplate, nil)
}

func (s *Server) HandleRecipeGeneratorPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, page.RecipeGeneratorTemplate, nil)
}

// HandleYouTubeExtractor shows the extractor form on GET and processes the
// submitted video on POST.
func (s *Server) HandleYouTubeExtractor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.render(w, r, page.YouTubeExtractorTemplate, page.ExtractorView{})
		return
	}

	videoURL := strings.TrimSpace(r.FormValue("youtube_url"))
	if check := validation.CheckVideoURL(videoURL); !check.IsValid {
		s.writeError(w, r, errors.NewValidationError(check.Reason, "INVALID_URL", "Paste a YouTube link"))
		return
	}

	result, err := s.extractor.Extract(r.Context(), videoURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.render(w, r, page.YouTubeExtractorTemplate, page.ExtractorView{
		Transcription: result.Transcription,
		Ingredients:   result.Ingredients,
	})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Failed to render page", "template", name, "error", err)
		sentry.CaptureError(r.Context(), err)
	}
}

// writeError answers with {"error": message} and the status the error
// carries. Server-side failures are logged and reported.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "status", status, "error", err)
		sentry.CaptureError(r.Context(), err)
	} else {
		slog.WarnContext(r.Context(), "Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
