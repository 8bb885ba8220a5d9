// Command recipe-client fills in the recipe generator page from flags,
// submits it to a running server and prints the text shown in the modal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/socialchef/recipegen/internal/client"
	"github.com/socialchef/recipegen/internal/httpclient"
	"github.com/socialchef/recipegen/internal/logger"
	"github.com/socialchef/recipegen/internal/page"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "recipe server base URL")
	ingredients := flag.String("ingredients", "", "comma separated ingredients")
	cuisine := flag.String("cuisine", "any", "cuisine")
	difficulty := flag.String("difficulty", "any", "difficulty")
	servings := flag.String("servings", "4", "number of servings")
	cookTime := flag.String("time", "30", "cooking time in minutes")
	timeout := flag.Duration("timeout", 3*time.Minute, "overall request timeout")
	env := flag.String("env", "development", "log format: development or production")
	flag.Parse()

	log := logger.New(*env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	hc := httpclient.NewInstrumentedClient(*timeout)

	p, err := loadPage(ctx, hc, *baseURL)
	if err != nil {
		log.Warn("Falling back to built-in generator page", "error", err)
		if p, err = page.GeneratorPage(); err != nil {
			fail(log, err)
		}
	}

	fields := map[string]string{
		client.IDIngredients: *ingredients,
		client.IDCuisine:     *cuisine,
		client.IDDifficulty:  *difficulty,
		client.IDServings:    *servings,
		client.IDTime:        *cookTime,
	}
	for id, v := range fields {
		el, err := p.MustElementByID(id)
		if err != nil {
			fail(log, err)
		}
		el.SetValue(v)
	}

	c := client.New(*baseURL, p, client.WithHTTPClient(hc), client.WithLogger(log))
	if err := c.GenerateRecipe(ctx); err != nil {
		fail(log, err)
	}

	if err := waitForModal(ctx, p); err != nil {
		fail(log, err)
	}

	text, _ := p.ElementByID(client.IDRecipeText)
	out := text.RenderedText()
	fmt.Println(out)

	if out == client.FetchErrorText || strings.HasPrefix(out, "Error: ") {
		os.Exit(1)
	}
}

// loadPage fetches the generator page from the server so the form matches
// what a browser would see.
func loadPage(ctx context.Context, hc *http.Client, baseURL string) (*page.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(baseURL, "/")+"/recipe-generator", nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return page.Parse(resp.Body)
}

func waitForModal(ctx context.Context, p *page.Page) error {
	modal, err := p.MustElementByID(client.IDModal)
	if err != nil {
		return err
	}
	content, ok := modal.Query(client.ModalContentSelector)
	if !ok {
		return fmt.Errorf("modal content not found")
	}

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for !content.HasClass(client.ClassShow) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func fail(log *slog.Logger, err error) {
	log.Error("recipe-client failed", "error", err)
	os.Exit(1)
}
