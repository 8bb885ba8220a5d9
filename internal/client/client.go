// Package client drives the recipe generator page: it reads the form,
// posts it to the backend and renders the answer into the recipe modal.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/socialchef/recipegen/internal/httpclient"
	"github.com/socialchef/recipegen/internal/page"
	"github.com/socialchef/recipegen/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Element ids and classes of the generator page.
const (
	IDIngredients = "ingredients"
	IDCuisine     = "cuisine"
	IDDifficulty  = "difficulty"
	IDServings    = "servings"
	IDTime        = "time"
	IDLoading     = "loading"
	IDModal       = "recipe-modal"
	IDRecipeText  = "recipe-text"

	ModalContentSelector = ".modal"
	ClassHidden          = "hidden"
	ClassShow            = "show"

	GeneratePath = "/generate-recipe"

	FetchErrorText = "Error fetching recipe."
)

type Client struct {
	baseURL    string
	page       *page.Page
	httpClient *http.Client
	scheduler  Scheduler
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithScheduler(s Scheduler) Option {
	return func(c *Client) { c.scheduler = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client bound to p that posts to baseURL + /generate-recipe.
// The default HTTP client has no timeout.
func New(baseURL string, p *page.Page, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		page:       p,
		httpClient: httpclient.NewInstrumentedClient(0),
		scheduler:  timerScheduler{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type formElements struct {
	ingredients, cuisine, difficulty, servings, time *page.Element
	loading, recipeText                              *page.Element
}

func (c *Client) lookupForm() (*formElements, error) {
	ids := []string{IDIngredients, IDCuisine, IDDifficulty, IDServings, IDTime, IDLoading, IDRecipeText}
	els := make([]*page.Element, len(ids))
	for i, id := range ids {
		el, err := c.page.MustElementByID(id)
		if err != nil {
			return nil, err
		}
		els[i] = el
	}
	return &formElements{
		ingredients: els[0],
		cuisine:     els[1],
		difficulty:  els[2],
		servings:    els[3],
		time:        els[4],
		loading:     els[5],
		recipeText:  els[6],
	}, nil
}

// GenerateRecipe reads the form, posts it and renders the outcome into the
// modal, which is then opened. Server errors and transport failures are
// rendered, not returned. An error is returned only when the page lacks an
// element the call needs; in that case the page is left untouched unless
// the modal root is the missing piece.
func (c *Client) GenerateRecipe(ctx context.Context) error {
	ctx, span := telemetry.Tracer("client").Start(ctx, "client.GenerateRecipe")
	defer span.End()

	form, err := c.lookupForm()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "form incomplete")
		return err
	}

	req := RecipeRequest{
		Ingredients: ParseIngredients(form.ingredients.Value()),
		Cuisine:     form.cuisine.Value(),
		Difficulty:  form.difficulty.Value(),
		Servings:    form.servings.Value(),
		Time:        form.time.Value(),
	}
	span.SetAttributes(attribute.Int("recipe.ingredients", len(req.Ingredients)))

	form.loading.RemoveClass(ClassHidden)

	resp, err := c.post(ctx, req)
	form.loading.AddClass(ClassHidden)

	switch {
	case err != nil:
		span.RecordError(err)
		c.logger.ErrorContext(ctx, "Error fetching data", "error", err)
		form.recipeText.SetText(FetchErrorText)
	case resp.Error != "":
		span.SetAttributes(attribute.Bool("recipe.server_error", true))
		form.recipeText.SetText("Error: " + resp.Error)
	default:
		form.recipeText.SetHTML(strings.ReplaceAll(*resp.Recipe, "\n", "<br>"))
	}

	return c.OpenModal()
}

func (c *Client) post(ctx context.Context, reqBody RecipeRequest) (*RecipeResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+GeneratePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// The body is decoded whatever the status; the server reports failures
	// as {"error": ...} with a 4xx or 5xx.
	return decodeResponse(resp.Body)
}

// OpenModal un-hides the modal root and, one tick later, adds the show
// class to its content.
func (c *Client) OpenModal() error {
	modal, err := c.page.MustElementByID(IDModal)
	if err != nil {
		return err
	}

	modal.RemoveClass(ClassHidden)
	c.scheduler.AfterFunc(ShowDelay, func() {
		content, ok := modal.Query(ModalContentSelector)
		if !ok {
			c.logger.Error("Modal content not found!")
			return
		}
		content.AddClass(ClassShow)
	})
	return nil
}

// CloseModal removes the show class from the modal content and hides the
// root once the exit transition has had time to run. A page without a modal
// root is logged and otherwise ignored.
func (c *Client) CloseModal() {
	modal, ok := c.page.ElementByID(IDModal)
	if !ok {
		c.logger.Error("Modal element not found!")
		return
	}

	if content, ok := modal.Query(ModalContentSelector); ok {
		content.RemoveClass(ClassShow)
	}
	c.scheduler.AfterFunc(HideDelay, func() {
		modal.AddClass(ClassHidden)
	})
}
