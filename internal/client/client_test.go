package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/socialchef/recipegen/internal/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScheduler queues deferred work until Advance is called.
type fakeScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []fakeTask
}

type fakeTask struct {
	due time.Duration
	seq int
	f   func()
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.tasks = append(s.tasks, fakeTask{due: s.now + d, seq: s.seq, f: f})
}

// Advance moves the clock forward and runs every task that became due, in
// due order.
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].due == s.tasks[j].due {
			return s.tasks[i].seq < s.tasks[j].seq
		}
		return s.tasks[i].due < s.tasks[j].due
	})
	var due []fakeTask
	var rest []fakeTask
	for _, t := range s.tasks {
		if t.due <= s.now {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	s.tasks = rest
	s.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (s *fakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newPage(t *testing.T) *page.Page {
	t.Helper()
	p, err := page.GeneratorPage()
	require.NoError(t, err)
	return p
}

func element(t *testing.T, p *page.Page, id string) *page.Element {
	t.Helper()
	el, ok := p.ElementByID(id)
	require.True(t, ok, "missing #%s", id)
	return el
}

func modalContent(t *testing.T, p *page.Page) *page.Element {
	t.Helper()
	content, ok := element(t, p, IDModal).Query(ModalContentSelector)
	require.True(t, ok)
	return content
}

func quietLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func jsonServer(t *testing.T, status int, body string, seen *RecipeRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, GeneratePath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseIngredients(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"trimmed", "egg, flour ,sugar", []string{"egg", "flour", "sugar"}},
		{"empty middle", "egg,,flour", []string{"egg", "", "flour"}},
		{"leading and trailing", ",egg,", []string{"", "egg", ""}},
		{"empty input", "", []string{""}},
		{"duplicates kept", "egg, egg", []string{"egg", "egg"}},
		{"inner spaces kept", "  olive oil  ", []string{"olive oil"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIngredients(tt.raw))
		})
	}
}

func TestGenerateRecipe_Success(t *testing.T) {
	var seen RecipeRequest
	srv := jsonServer(t, http.StatusOK, `{"recipe":"Step 1\nStep 2"}`, &seen)

	p := newPage(t)
	element(t, p, IDIngredients).SetValue("egg, flour ,sugar")
	element(t, p, IDCuisine).SetValue("italian")
	element(t, p, IDDifficulty).SetValue("easy")
	element(t, p, IDServings).SetValue("2")
	element(t, p, IDTime).SetValue("15")

	sched := &fakeScheduler{}
	c := New(srv.URL, p, WithScheduler(sched), WithHTTPClient(srv.Client()))

	require.NoError(t, c.GenerateRecipe(context.Background()))

	assert.Equal(t, RecipeRequest{
		Ingredients: []string{"egg", "flour", "sugar"},
		Cuisine:     "italian",
		Difficulty:  "easy",
		Servings:    "2",
		Time:        "15",
	}, seen)

	text := element(t, p, IDRecipeText)
	inner, err := text.InnerHTML()
	require.NoError(t, err)
	assert.Equal(t, "Step 1<br/>Step 2", inner)
	assert.Equal(t, "Step 1\nStep 2", text.RenderedText())

	assert.True(t, element(t, p, IDLoading).HasClass(ClassHidden))
	assert.False(t, element(t, p, IDModal).HasClass(ClassHidden))
	assert.False(t, modalContent(t, p).HasClass(ClassShow))

	sched.Advance(ShowDelay)
	assert.True(t, modalContent(t, p).HasClass(ClassShow))
}

func TestGenerateRecipe_RecipeMarkupIsNotEscaped(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"recipe":"<b>Pasta</b>\nBoil"}`, nil)
	p := newPage(t)

	c := New(srv.URL, p, WithScheduler(&fakeScheduler{}))
	require.NoError(t, c.GenerateRecipe(context.Background()))

	_, bold := element(t, p, IDRecipeText).Query("b")
	assert.True(t, bold)
}

func TestGenerateRecipe_ServerError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"ok status", http.StatusOK, `{"error":"no ingredients"}`, "Error: no ingredients"},
		{"error status", http.StatusInternalServerError, `{"error":"no ingredients"}`, "Error: no ingredients"},
		{"markup stays text", http.StatusOK, `{"error":"<i>bad</i>"}`, "Error: <i>bad</i>"},
		{"error wins over recipe", http.StatusOK, `{"recipe":"x","error":"boom"}`, "Error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := jsonServer(t, tt.status, tt.body, nil)
			p := newPage(t)
			sched := &fakeScheduler{}

			c := New(srv.URL, p, WithScheduler(sched))
			require.NoError(t, c.GenerateRecipe(context.Background()))

			text := element(t, p, IDRecipeText)
			assert.Equal(t, tt.want, text.Text())
			_, hasChild := text.Query("*")
			assert.False(t, hasChild)

			assert.True(t, element(t, p, IDLoading).HasClass(ClassHidden))
			assert.False(t, element(t, p, IDModal).HasClass(ClassHidden))
			sched.Advance(ShowDelay)
			assert.True(t, modalContent(t, p).HasClass(ClassShow))
		})
	}
}

func TestGenerateRecipe_FetchFailure(t *testing.T) {
	tests := []struct {
		name      string
		transport roundTripFunc
	}{
		{
			name: "transport rejection",
			transport: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
		},
		{
			name:      "non json body",
			transport: respond(http.StatusBadGateway, "<html>bad gateway</html>"),
		},
		{
			name:      "empty error and no recipe",
			transport: respond(http.StatusOK, `{"error":""}`),
		},
		{
			name:      "null recipe",
			transport: respond(http.StatusOK, `{"recipe":null}`),
		},
		{
			name:      "non string recipe",
			transport: respond(http.StatusOK, `{"recipe":42}`),
		},
		{
			name:      "non string error",
			transport: respond(http.StatusOK, `{"error":5}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPage(t)
			sched := &fakeScheduler{}
			var logs bytes.Buffer

			c := New("http://recipes.test", p,
				WithScheduler(sched),
				WithHTTPClient(&http.Client{Transport: tt.transport}),
				WithLogger(quietLogger(&logs)),
			)
			require.NoError(t, c.GenerateRecipe(context.Background()))

			assert.Equal(t, FetchErrorText, element(t, p, IDRecipeText).Text())
			assert.True(t, element(t, p, IDLoading).HasClass(ClassHidden))
			assert.False(t, element(t, p, IDModal).HasClass(ClassHidden))
			assert.Contains(t, logs.String(), "Error fetching data")

			sched.Advance(ShowDelay)
			assert.True(t, modalContent(t, p).HasClass(ClassShow))
		})
	}
}

func respond(status int, body string) roundTripFunc {
	return func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Header:     http.Header{},
			Body:       io.NopCloser(bytes.NewBufferString(body)),
			Request:    r,
		}, nil
	}
}

func TestGenerateRecipe_LoadingShownDuringRequest(t *testing.T) {
	p := newPage(t)
	var loadingHidden bool

	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		loadingHidden = element(t, p, IDLoading).HasClass(ClassHidden)
		return respond(http.StatusOK, `{"recipe":"ok"}`)(r)
	})
	c := New("http://recipes.test", p, WithScheduler(&fakeScheduler{}), WithHTTPClient(&http.Client{Transport: transport}))

	require.NoError(t, c.GenerateRecipe(context.Background()))
	assert.False(t, loadingHidden)
	assert.True(t, element(t, p, IDLoading).HasClass(ClassHidden))
}

func TestGenerateRecipe_MissingInputAbortsBeforeSideEffects(t *testing.T) {
	p, err := page.ParseString(`<html><body>
<input id="ingredients" value="egg">
<div id="loading" class="hidden"></div>
<div id="recipe-modal" class="hidden"><div class="modal"></div></div>
<div id="recipe-text"></div>
</body></html>`)
	require.NoError(t, err)

	var calls int
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return respond(http.StatusOK, `{"recipe":"ok"}`)(r)
	})
	sched := &fakeScheduler{}
	c := New("http://recipes.test", p, WithScheduler(sched), WithHTTPClient(&http.Client{Transport: transport}))

	err = c.GenerateRecipe(context.Background())
	require.ErrorIs(t, err, page.ErrElementNotFound)
	assert.Contains(t, err.Error(), "#cuisine")

	assert.Zero(t, calls)
	assert.Zero(t, sched.Pending())
	assert.True(t, element(t, p, IDLoading).HasClass(ClassHidden))
	assert.True(t, element(t, p, IDModal).HasClass(ClassHidden))
	assert.Empty(t, element(t, p, IDRecipeText).Text())
}

func TestGenerateRecipe_MissingModal(t *testing.T) {
	p, err := page.ParseString(`<html><body>
<input id="ingredients" value="egg"><input id="cuisine" value="any">
<input id="difficulty" value="any"><input id="servings" value="4"><input id="time" value="30">
<div id="loading" class="hidden"></div>
<div id="recipe-text"></div>
</body></html>`)
	require.NoError(t, err)

	c := New("http://recipes.test", p,
		WithScheduler(&fakeScheduler{}),
		WithHTTPClient(&http.Client{Transport: respond(http.StatusOK, `{"recipe":"ok"}`)}),
	)

	err = c.GenerateRecipe(context.Background())
	assert.ErrorIs(t, err, page.ErrElementNotFound)
	assert.Equal(t, "ok", element(t, p, IDRecipeText).Text())
}

func TestCloseModal_MissingRootIsNoop(t *testing.T) {
	p, err := page.ParseString(`<html><body><div class="modal show"></div></body></html>`)
	require.NoError(t, err)

	var logs bytes.Buffer
	sched := &fakeScheduler{}
	c := New("", p, WithScheduler(sched), WithLogger(quietLogger(&logs)))

	before, err := p.HTML()
	require.NoError(t, err)

	assert.NotPanics(t, c.CloseModal)
	assert.Zero(t, sched.Pending())
	sched.Advance(HideDelay)

	after, err := p.HTML()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Contains(t, logs.String(), "Modal element not found!")
}

func TestCloseModal_MissingContentStillHidesRoot(t *testing.T) {
	p, err := page.ParseString(`<html><body><div id="recipe-modal"></div></body></html>`)
	require.NoError(t, err)

	sched := &fakeScheduler{}
	c := New("", p, WithScheduler(sched))

	c.CloseModal()
	assert.False(t, element(t, p, IDModal).HasClass(ClassHidden))
	sched.Advance(HideDelay)
	assert.True(t, element(t, p, IDModal).HasClass(ClassHidden))
}

func TestOpenModal_MissingRoot(t *testing.T) {
	p, err := page.ParseString(`<html><body></body></html>`)
	require.NoError(t, err)

	c := New("", p, WithScheduler(&fakeScheduler{}))
	assert.ErrorIs(t, c.OpenModal(), page.ErrElementNotFound)
}

func TestModal_OpenThenClose(t *testing.T) {
	t.Run("after open settled", func(t *testing.T) {
		p := newPage(t)
		sched := &fakeScheduler{}
		c := New("", p, WithScheduler(sched))

		require.NoError(t, c.OpenModal())
		sched.Advance(ShowDelay)
		require.True(t, modalContent(t, p).HasClass(ClassShow))

		c.CloseModal()
		assert.False(t, modalContent(t, p).HasClass(ClassShow))
		assert.False(t, element(t, p, IDModal).HasClass(ClassHidden))

		sched.Advance(HideDelay - time.Millisecond)
		assert.False(t, element(t, p, IDModal).HasClass(ClassHidden))
		sched.Advance(time.Millisecond)
		assert.True(t, element(t, p, IDModal).HasClass(ClassHidden))
	})

	t.Run("show removed before hidden restored", func(t *testing.T) {
		p := newPage(t)
		sched := &fakeScheduler{}
		c := New("", p, WithScheduler(sched))

		require.NoError(t, c.OpenModal())
		sched.Advance(ShowDelay)

		var order []string
		content := modalContent(t, p)
		root := element(t, p, IDModal)

		c.CloseModal()
		if !content.HasClass(ClassShow) {
			order = append(order, "show removed")
		}
		for i := 0; i < int(HideDelay/time.Millisecond); i++ {
			sched.Advance(time.Millisecond)
			if root.HasClass(ClassHidden) {
				order = append(order, "hidden restored")
				break
			}
		}
		assert.Equal(t, []string{"show removed", "hidden restored"}, order)
	})

	t.Run("closed before show fires", func(t *testing.T) {
		p := newPage(t)
		sched := &fakeScheduler{}
		c := New("", p, WithScheduler(sched))

		require.NoError(t, c.OpenModal())
		c.CloseModal()
		assert.False(t, modalContent(t, p).HasClass(ClassShow))
		assert.Equal(t, 2, sched.Pending())

		// The pending show still lands, then the root is hidden again.
		sched.Advance(ShowDelay)
		assert.True(t, modalContent(t, p).HasClass(ClassShow))
		assert.False(t, element(t, p, IDModal).HasClass(ClassHidden))

		sched.Advance(HideDelay - ShowDelay)
		assert.True(t, modalContent(t, p).HasClass(ClassShow))
		assert.True(t, element(t, p, IDModal).HasClass(ClassHidden))
		assert.Zero(t, sched.Pending())
	})
}

func TestModal_RealTimers(t *testing.T) {
	p := newPage(t)
	c := New("", p)

	require.NoError(t, c.OpenModal())
	assert.False(t, element(t, p, IDModal).HasClass(ClassHidden))
	assert.Eventually(t, func() bool {
		return modalContent(t, p).HasClass(ClassShow)
	}, time.Second, 5*time.Millisecond)

	c.CloseModal()
	assert.False(t, modalContent(t, p).HasClass(ClassShow))
	assert.Eventually(t, func() bool {
		return element(t, p, IDModal).HasClass(ClassHidden)
	}, 2*time.Second, 10*time.Millisecond)
}
