package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/newsdesk/internal/document"
	"github.com/starford/newsdesk/internal/ledger"
	"github.com/starford/newsdesk/internal/newsletter"
	"github.com/starford/newsdesk/internal/storage"
	"github.com/starford/newsdesk/internal/testutil"
)

const file = "spring-update.md"

var today = time.Date(2025, time.June, 18, 9, 0, 0, 0, time.UTC)

// testEnv builds a service over a temp directory and ledger with fake sources.
// A non-empty token enables bearer auth.
func testEnv(t *testing.T, src *testutil.Sources, token string) (*newsletter.Service, http.Handler, *storage.FS) {
	t.Helper()
	_, store := testutil.TestStore(t)
	clock := func() time.Time { return today }
	patcher := document.NewPatcher(store,
		document.WithLogger(testutil.Logger()),
		document.WithClock(clock))
	svc := newsletter.NewService(store, patcher,
		newsletter.WithLedger(testutil.TestLedger(t)),
		newsletter.WithNewsSource(src),
		newsletter.WithVideoSource(src),
		newsletter.WithCalendar(src),
		newsletter.WithDemoLister(src),
		newsletter.WithLogger(testutil.Logger()),
		newsletter.WithClock(clock))
	return svc, NewRouter(svc, file, token != "", token, nil), store
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetDocument_Missing(t *testing.T) {
	_, router, _ := testEnv(t, testutil.SampleSources(), "")
	w := do(t, router, http.MethodGet, "/document", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var body errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Error == "" {
		t.Error("missing error message")
	}
}

func TestCreateThenGetDocument(t *testing.T) {
	_, router, _ := testEnv(t, testutil.SampleSources(), "")

	if w := do(t, router, http.MethodPost, "/document", nil); w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	w := do(t, router, http.MethodGet, "/document", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "# June 18\n\n## News:\n") {
		t.Errorf("document = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("content type = %q", ct)
	}
}

func TestGetDocumentHTML(t *testing.T) {
	svc, router, _ := testEnv(t, testutil.SampleSources(), "")
	if _, err := svc.UpdateNews(context.Background(), file); err != nil {
		t.Fatalf("UpdateNews: %v", err)
	}

	w := do(t, router, http.MethodGet, "/document/html", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	page := w.Body.String()
	for _, want := range []string{
		"<title>June 18</title>",
		`<h2 id="news">News:</h2>`,
		`<a href="https://spring.io/blog/boot-3-5-1">Spring Boot 3.5.1 available now</a>`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q:\n%s", want, page)
		}
	}
}

func TestRefreshSection(t *testing.T) {
	_, router, _ := testEnv(t, testutil.SampleSources(), "")

	w := do(t, router, http.MethodPost, "/sections/videos/refresh", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var res document.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Section != document.SectionVideos || !res.Changed || !res.Bootstrapped || res.Rendered != 1 {
		t.Errorf("result = %+v", res)
	}

	w = do(t, router, http.MethodGet, "/history", nil)
	var hist struct {
		Patches []ledger.Entry `json:"patches"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist.Patches) != 1 || hist.Patches[0].Origin != newsletter.OriginHTTP {
		t.Errorf("history = %+v", hist.Patches)
	}
}

func TestRefreshSection_Errors(t *testing.T) {
	src := testutil.SampleSources()
	src.Fail = map[string]error{"demos": errors.New("rate limited")}
	_, router, _ := testEnv(t, src, "")

	cases := []struct {
		path string
		want int
	}{
		{"/sections/podcasts/refresh", http.StatusNotFound},
		{"/sections/demos/refresh", http.StatusBadGateway},
	}
	for _, tc := range cases {
		if w := do(t, router, http.MethodPost, tc.path, nil); w.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.path, w.Code, tc.want)
		}
	}
}

func TestRefreshSection_DuplicateHeading(t *testing.T) {
	_, router, store := testEnv(t, testutil.SampleSources(), "")
	doc := "# June 18\n\n## News:\n- old\n\n## News:\n- again\n"
	if err := store.Write(file, []byte(doc)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if w := do(t, router, http.MethodPost, "/sections/news/refresh", nil); w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	got, _ := store.Read(file)
	if string(got) != doc {
		t.Errorf("document changed:\n%s", got)
	}
}

func TestUpdateAll_PartialFailure(t *testing.T) {
	src := testutil.SampleSources()
	src.Fail = map[string]error{"news": errors.New("feed down")}
	_, router, _ := testEnv(t, src, "")

	w := do(t, router, http.MethodPost, "/sections/refresh", nil)
	if w.Code != http.StatusMultiStatus {
		t.Fatalf("status = %d, want 207", w.Code)
	}
	var body struct {
		Sections []newsletter.Outcome `json:"sections"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Sections) != 5 || body.Sections[0].Error == "" || body.Sections[1].Error != "" {
		t.Errorf("sections = %+v", body.Sections)
	}
}

func TestAddRelease(t *testing.T) {
	_, router, _ := testEnv(t, testutil.SampleSources(), "")

	body, _ := json.Marshal(addReleaseRequest{Date: "Jun 12", Summary: "Spring Security 6.5.1"})
	if w := do(t, router, http.MethodPost, "/releases", body); w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	w := do(t, router, http.MethodGet, "/document", nil)
	if !strings.Contains(w.Body.String(), "## Recent Enterprise Releases:\n- June 12\n  - Spring Security 6.5.1\n") {
		t.Errorf("document = %q", w.Body.String())
	}

	bad, _ := json.Marshal(addReleaseRequest{Date: "someday", Summary: "x"})
	if w := do(t, router, http.MethodPost, "/releases", bad); w.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/releases", []byte("{")); w.Code != http.StatusBadRequest {
		t.Errorf("bad json status = %d, want 400", w.Code)
	}
}

func TestPreviewNews(t *testing.T) {
	_, router, _ := testEnv(t, testutil.SampleSources(), "")

	w := do(t, router, http.MethodGet, "/news/preview?limit=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Body.String(); got != "- [Spring Boot 3.5.1 available now](https://spring.io/blog/boot-3-5-1)\n" {
		t.Errorf("preview = %q", got)
	}
}

func TestListSections(t *testing.T) {
	svc, router, _ := testEnv(t, testutil.SampleSources(), "")
	if err := svc.Create(context.Background(), file); err != nil {
		t.Fatalf("Create: %v", err)
	}
	w := do(t, router, http.MethodGet, "/sections", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var outline document.Outline
	if err := json.Unmarshal(w.Body.Bytes(), &outline); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(outline.Sections) != 5 || outline.Sections[0].Slug != "news" {
		t.Errorf("outline = %+v", outline)
	}
}

func TestSourceUnavailable(t *testing.T) {
	_, store := testutil.TestStore(t)
	svc := newsletter.NewService(store, document.NewPatcher(store, document.WithLogger(testutil.Logger())),
		newsletter.WithLogger(testutil.Logger()))
	router := NewRouter(svc, file, false, "", nil)

	if w := do(t, router, http.MethodPost, "/sections/news/refresh", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, router, _ := testEnv(t, testutil.SampleSources(), "secret")

	if w := do(t, router, http.MethodGet, "/sections", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/news/preview", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/news/preview", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", w.Code)
	}
}
