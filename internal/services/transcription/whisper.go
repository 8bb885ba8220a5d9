package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/socialchef/recipegen/internal/errors"
	"github.com/socialchef/recipegen/internal/httpclient"
	"github.com/socialchef/recipegen/internal/metrics"
)

const translationsPath = "/audio/translations"

// WhisperProvider implements TranscriptionProvider against a Whisper
// compatible translations endpoint. Speech in any language comes back as
// English text.
type WhisperProvider struct {
	name       string
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

type WhisperOption func(*WhisperProvider)

func WithWhisperModel(model string) WhisperOption {
	return func(p *WhisperProvider) { p.model = model }
}

func WithWhisperBaseURL(url string) WhisperOption {
	return func(p *WhisperProvider) { p.baseURL = url }
}

func WithWhisperHTTPClient(c *http.Client) WhisperOption {
	return func(p *WhisperProvider) { p.httpClient = c }
}

func newWhisperProvider(ep endpoint, apiKey string, opts []WhisperOption) *WhisperProvider {
	p := &WhisperProvider{
		name:       ep.name,
		apiKey:     apiKey,
		model:      ep.model,
		baseURL:    ep.baseURL,
		httpClient: httpclient.InstrumentedClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewGroqProvider creates a new Groq transcription provider
func NewGroqProvider(apiKey string, opts ...WhisperOption) *WhisperProvider {
	return newWhisperProvider(endpoints[ProviderGroq], apiKey, opts)
}

// NewOpenAIProvider creates a new OpenAI transcription provider
func NewOpenAIProvider(apiKey string, opts ...WhisperOption) *WhisperProvider {
	return newWhisperProvider(endpoints[ProviderOpenAI], apiKey, opts)
}

func (p *WhisperProvider) Name() string  { return p.name }
func (p *WhisperProvider) Model() string { return p.model }

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads the audio file and returns the English translation
// of its speech.
func (p *WhisperProvider) Transcribe(ctx context.Context, audioPath string) (string, error) {
	// 1. Open audio file
	audioFile, err := os.Open(audioPath)
	if err != nil {
		return "", errors.NewTranscriptionError(fmt.Sprintf("The file %s was not found.", audioPath), "AUDIO_FILE_ERROR", err)
	}
	defer audioFile.Close()

	// 2. Prepare multipart form via pipe to avoid buffering in memory
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, audioFile); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("model", p.model); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("response_format", "json"); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	// 3. Send to the provider
	req, err := http.NewRequestWithContext(httpclient.WithProvider(ctx, p.name), http.MethodPost, p.baseURL+translationsPath, pr)
	if err != nil {
		pr.Close()
		return "", errors.NewTranscriptionError(fmt.Sprintf("failed to create %s request", p.name), "WHISPER_REQUEST_ERROR", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	metrics.RecordExternalCall(ctx, p.name, start)
	if err != nil {
		pr.Close()
		return "", errors.NewTranscriptionError(fmt.Sprintf("failed to call %s translation API", p.name), "WHISPER_API_ERROR", err)
	}
	defer resp.Body.Close()

	// 4. Parse response
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewTranscriptionError(fmt.Sprintf("failed to read %s response", p.name), "READ_RESPONSE_ERROR", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewTranscriptionError(fmt.Sprintf("%s API error (status %d): %s", p.name, resp.StatusCode, string(respBody)), "WHISPER_API_HTTP_ERROR", nil)
	}

	var transResp transcriptionResponse
	if err := json.Unmarshal(respBody, &transResp); err != nil {
		return "", errors.NewTranscriptionError(fmt.Sprintf("failed to parse %s response", p.name), "PARSE_RESPONSE_ERROR", err)
	}

	return transResp.Text, nil
}
