package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/starford/shajara/internal/testutil"
	"github.com/starford/shajara/internal/treeservice"
)

const familyGED = `0 HEAD
0 @I1@ INDI
1 NAME Omar /Saeed/
1 SEX M
1 BIRT
2 DATE 1900
1 FAMS @F1@
0 @I2@ INDI
1 NAME Huda
1 SEX F
1 FAMS @F1@
0 @I3@ INDI
1 NAME Khaled /Saeed/
1 SEX M
1 FAMC @F1@
0 @I4@ INDI
1 NAME PRIVATE
1 FAMC @F1@
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 CHIL @I3@
1 CHIL @I4@
0 TRLR
`

// testEnv sets up a temp sources dir, SQLite index, service, and router.
// A non-empty authToken enables token mode.
func testEnv(t *testing.T, authToken string) (*treeservice.Service, http.Handler) {
	t.Helper()
	return testEnvFull(t, authToken != "", authToken, nil)
}

func testEnvFull(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler) (*treeservice.Service, http.Handler) {
	t.Helper()
	svc := testutil.TestService(t, map[string]string{"saeed.ged": familyGED}, treeservice.Options{
		Families: []treeservice.Family{
			{Slug: "saeed", DisplayName: "Saeed", Source: "saeed.ged", RootID: "@I1@"},
			{Slug: "ghost", Source: "ghost.ged"},
		},
		ExcludePrivate: true,
	})
	return svc, NewRouter(svc, authEnabled, authToken, sseHandler)
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func TestListFamilies(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/families")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp FamilyListResponse
	decode(t, w, &resp)
	if len(resp.Families) != 2 {
		t.Fatalf("families = %+v", resp.Families)
	}
	if resp.Families[0].Slug != "saeed" || !resp.Families[0].Loaded {
		t.Errorf("first family = %+v", resp.Families[0])
	}
	if resp.Families[1].Loaded {
		t.Errorf("ghost should not be loaded")
	}
}

func TestGetFamily(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/families/saeed")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var fd FamilyDetail
	decode(t, w, &fd)
	if fd.Root.ID != "@I1@" || fd.Root.Label != "Omar Saeed (1900)" {
		t.Errorf("root = %+v", fd.Root)
	}
	if fd.Stats.Individuals != 3 {
		t.Errorf("stats = %+v", fd.Stats)
	}
}

func TestGetFamily_EscapedSlug(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/families/sa%65ed")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var fd FamilyDetail
	decode(t, w, &fd)
	if fd.Root.ID != "@I1@" {
		t.Errorf("root = %+v", fd.Root)
	}
}

func TestGetFamily_Errors(t *testing.T) {
	_, router := testEnv(t, "")

	if w := get(t, router, "/families/nope"); w.Code != http.StatusNotFound {
		t.Errorf("unknown family = %d, want 404", w.Code)
	}
	if w := get(t, router, "/families/ghost"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("unloaded family = %d, want 503", w.Code)
	}
}

func TestRootsEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/families/saeed/roots?strategy=all")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp RootsResponse
	decode(t, w, &resp)
	if resp.Strategy != "all" || len(resp.Roots) != 3 {
		t.Errorf("resp = %+v", resp)
	}

	if w := get(t, router, "/families/saeed/roots?strategy=bogus"); w.Code != http.StatusBadRequest {
		t.Errorf("bad strategy = %d, want 400", w.Code)
	}
}

func TestTreeEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/families/saeed/tree?depth=2&highlight="+url.QueryEscape("@I3@"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		RootID string `json:"root_id"`
		Nodes  []struct {
			ID        string `json:"id"`
			Highlight string `json:"highlight"`
		} `json:"nodes"`
		Edges []map[string]any `json:"edges"`
	}
	decode(t, w, &resp)
	if resp.RootID != "@I1@" || len(resp.Nodes) != 2 || len(resp.Edges) != 1 {
		t.Errorf("tree = %+v", resp)
	}
	if resp.Nodes[1].ID != "@I3@" || resp.Nodes[1].Highlight != "selected" {
		t.Errorf("highlighted node = %+v", resp.Nodes[1])
	}
}

func TestTreeEndpoint_BadArguments(t *testing.T) {
	_, router := testEnv(t, "")

	for _, target := range []string{
		"/families/saeed/tree?depth=abc",
		"/families/saeed/tree?depth=-1",
		"/families/saeed/tree?depth=1000",
	} {
		if w := get(t, router, target); w.Code != http.StatusBadRequest {
			t.Errorf("%s = %d, want 400", target, w.Code)
		}
	}
	if w := get(t, router, "/families/saeed/tree?root=%40nope%40"); w.Code != http.StatusNotFound {
		t.Errorf("unknown root = %d, want 404", w.Code)
	}
}

func TestVisibleEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/families/saeed/visible")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp VisibleResponse
	decode(t, w, &resp)
	want := []string{"@I1@", "@I2@", "@I3@"}
	if len(resp.IDs) != len(want) {
		t.Fatalf("ids = %v, want %v", resp.IDs, want)
	}
	for i := range want {
		if resp.IDs[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, resp.IDs[i], want[i])
		}
	}
}

func TestGetPerson(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/families/saeed/people/"+url.PathEscape("@I3@"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var p PersonDetail
	decode(t, w, &p)
	if p.Name != "Khaled Saeed" || len(p.Parents) != 2 || !p.InTree {
		t.Errorf("person = %+v", p)
	}

	if w := get(t, router, "/families/saeed/people/"+url.PathEscape("@I4@")); w.Code != http.StatusNotFound {
		t.Errorf("private person = %d, want 404", w.Code)
	}
}

func TestLineageEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/families/saeed/people/"+url.PathEscape("@I3@")+"/lineage")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var l treeservice.LineageView
	decode(t, w, &l)
	if len(l.Ancestors) != 2 || len(l.Descendants) != 0 {
		t.Errorf("lineage = %+v", l)
	}
}

func TestSearchEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/families/saeed/search?q=khaled")
	if w.Code != http.StatusOK {
		t.Fatalf("family search = %d, body = %s", w.Code, w.Body.String())
	}
	var fam SearchResponse
	decode(t, w, &fam)
	if len(fam.Results) != 1 || fam.Results[0].ID != "@I3@" {
		t.Errorf("family search = %+v", fam.Results)
	}

	w = get(t, router, "/search?q=saeed&limit=10")
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	var all PeopleResponse
	decode(t, w, &all)
	if len(all.Results) != 2 {
		t.Errorf("search results = %d, want 2", len(all.Results))
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")

	for _, target := range []string{"/search", "/search?q=%20", "/families/saeed/search", "/search?q=a&limit=x"} {
		if w := get(t, router, target); w.Code != http.StatusBadRequest {
			t.Errorf("%s = %d, want 400", target, w.Code)
		}
	}
}

func TestSourcesEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/sources")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp SourcesResponse
	decode(t, w, &resp)
	if len(resp.Sources) != 1 || resp.Sources[0].Path != "saeed.ged" || resp.Sources[0].Individuals != 4 {
		t.Errorf("sources = %+v", resp.Sources)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/families", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := get(t, router, "/families")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Error("missing WWW-Authenticate header")
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/families", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	if w := get(t, router, "/families"); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "secret")

	if w := get(t, router, "/events"); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthDisabled(t *testing.T) {
	_, router := testEnvWithSSE(t, false, "")

	// The stub blocks until the request context is cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE should not require auth when disabled")
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

func TestSSEEvents_QueryToken(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events?access_token=tok", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with query token should not 401")
	}

	// The query parameter is not accepted outside the event stream.
	if w := get(t, router, "/families?access_token=tok"); w.Code != http.StatusUnauthorized {
		t.Errorf("query token on /families = %d, want 401", w.Code)
	}
}

// testEnvWithSSE creates a router with a dummy SSE handler to test auth on /events.
func testEnvWithSSE(t *testing.T, authEnabled bool, token string) (*treeservice.Service, http.Handler) {
	t.Helper()
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
	return testEnvFull(t, authEnabled, token, sseHandler)
}
