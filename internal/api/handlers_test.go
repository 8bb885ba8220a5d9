package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/socialchef/recipegen/internal/config"
	apperrors "github.com/socialchef/recipegen/internal/errors"
	"github.com/socialchef/recipegen/internal/services/recipe"
	"github.com/socialchef/recipegen/internal/services/transcription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	recipe string
	err    error
	got    *recipe.Params
}

func (g *stubGenerator) GenerateRecipe(ctx context.Context, params recipe.Params) (string, error) {
	g.got = &params
	return g.recipe, g.err
}

type stubExtractor struct {
	result *transcription.Extraction
	err    error
	gotURL string
}

func (e *stubExtractor) Extract(ctx context.Context, videoURL string) (*transcription.Extraction, error) {
	e.gotURL = videoURL
	return e.result, e.err
}

func newTestServer(g RecipeGenerator, e VideoExtractor) *Server {
	return NewServer(&config.Config{ServiceName: "recipegen-test"}, g, e)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func TestHandleGenerateRecipe(t *testing.T) {
	gen := &stubGenerator{recipe: "Omelette\n1. Whisk eggs"}
	srv := newTestServer(gen, nil)

	req := httptest.NewRequest(http.MethodPost, "/generate-recipe",
		strings.NewReader(`{"ingredients":["egg",""],"cuisine":"french","difficulty":"easy","servings":"2","time":"10"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	srv.HandleGenerateRecipe(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, map[string]string{"recipe": "Omelette\n1. Whisk eggs"}, decodeBody(t, rr))
	require.NotNil(t, gen.got)
	assert.Equal(t, recipe.Params{
		Ingredients: []string{"egg", ""},
		Cuisine:     "french",
		Difficulty:  "easy",
		Servings:    2,
		Time:        10,
	}, *gen.got)
}

func TestHandleGenerateRecipe_InvalidParams(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"bad servings", `{"servings":"many"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{}
			srv := newTestServer(gen, nil)

			rr := httptest.NewRecorder()
			srv.HandleGenerateRecipe(rr, httptest.NewRequest(http.MethodPost, "/generate-recipe", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.NotEmpty(t, decodeBody(t, rr)["error"])
			assert.Nil(t, gen.got)
		})
	}
}

func TestHandleGenerateRecipe_ProviderError(t *testing.T) {
	appErr := apperrors.NewRecipeGenerationError("Mistral API error (status 503): down", "PROVIDER_STATUS", nil)
	appErr.StatusCode = http.StatusBadGateway
	srv := newTestServer(&stubGenerator{err: appErr}, nil)

	rr := httptest.NewRecorder()
	srv.HandleGenerateRecipe(rr, httptest.NewRequest(http.MethodPost, "/generate-recipe", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, map[string]string{"error": "Mistral API error (status 503): down"}, decodeBody(t, rr))
}

func TestHandleGenerateRecipe_PlainError(t *testing.T) {
	srv := newTestServer(&stubGenerator{err: errors.New("boom")}, nil)

	rr := httptest.NewRecorder()
	srv.HandleGenerateRecipe(rr, httptest.NewRequest(http.MethodPost, "/generate-recipe", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "boom", decodeBody(t, rr)["error"])
}

func TestHandleYouTubeExtractor_Get(t *testing.T) {
	srv := newTestServer(nil, &stubExtractor{})

	rr := httptest.NewRecorder()
	srv.HandleYouTubeExtractor(rr, httptest.NewRequest(http.MethodGet, "/youtube_extractor", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("input[name=youtube_url]").Length())
	assert.Equal(t, 0, doc.Find("#transcription").Length())
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/youtube_extractor", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHandleYouTubeExtractor_MissingURL(t *testing.T) {
	ext := &stubExtractor{}
	srv := newTestServer(nil, ext)

	rr := httptest.NewRecorder()
	srv.HandleYouTubeExtractor(rr, postForm(url.Values{}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, map[string]string{"error": "No YouTube URL provided"}, decodeBody(t, rr))
	assert.Empty(t, ext.gotURL)
}

func TestHandleYouTubeExtractor_RejectsNonHTTPURL(t *testing.T) {
	ext := &stubExtractor{}
	srv := newTestServer(nil, ext)

	rr := httptest.NewRecorder()
	srv.HandleYouTubeExtractor(rr, postForm(url.Values{"youtube_url": {"--exec=id"}}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid YouTube URL", decodeBody(t, rr)["error"])
	assert.Empty(t, ext.gotURL)
}

func TestHandleYouTubeExtractor_Success(t *testing.T) {
	ext := &stubExtractor{result: &transcription.Extraction{
		Transcription: "• Add 200g flour.",
		Ingredients:   []string{"200g flour"},
	}}
	srv := newTestServer(nil, ext)

	rr := httptest.NewRecorder()
	srv.HandleYouTubeExtractor(rr, postForm(url.Values{"youtube_url": {"https://youtu.be/abc"}}))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://youtu.be/abc", ext.gotURL)

	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	assert.Equal(t, "• Add 200g flour.", doc.Find("#transcription pre").Text())
	assert.Equal(t, "200g flour", doc.Find("#ingredients li").Text())
}

func TestHandleYouTubeExtractor_Failure(t *testing.T) {
	ext := &stubExtractor{err: apperrors.NewDownloadError("Error downloading audio: Video unavailable", "YTDLP_FAILED", nil)}
	srv := newTestServer(nil, ext)

	rr := httptest.NewRecorder()
	srv.HandleYouTubeExtractor(rr, postForm(url.Values{"youtube_url": {"https://youtu.be/gone"}}))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Error downloading audio: Video unavailable", decodeBody(t, rr)["error"])
}
