package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

const (
	HomeTemplate             = "homepage.html"
	RecipeGeneratorTemplate  = "recipe_generator.html"
	YouTubeExtractorTemplate = "youtube_extractor.html"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ExtractorView is the data rendered by the YouTube extractor page. Nil
// fields render nothing.
type ExtractorView struct {
	Transcription string
	Ingredients   []string
}

// Render executes the named page template into w.
func Render(w io.Writer, name string, data any) error {
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}

// GeneratorPage returns a fresh document built from the embedded recipe
// generator markup.
func GeneratorPage() (*Page, error) {
	var buf bytes.Buffer
	if err := Render(&buf, RecipeGeneratorTemplate, nil); err != nil {
		return nil, err
	}
	return Parse(&buf)
}
