package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	recsdk "github.com/betterwithin/recommend-sdk-go"
)

func testLogger() *Logger {
	return NopLogger()
}

// panicSource blows up on snapshot, standing in for a backend bug.
type panicSource struct{}

func (panicSource) Snapshot(ctx context.Context) ([]recsdk.ContentItem, error) {
	panic("backend bug")
}

// failingSource returns an error on snapshot.
type failingSource struct{}

func (failingSource) Snapshot(ctx context.Context) ([]recsdk.ContentItem, error) {
	return nil, errors.New("backend down")
}

func testCatalog() []recsdk.ContentItem {
	return []recsdk.ContentItem{
		{
			ID:              "anxiety-1",
			Title:           "Calm Breathing",
			Type:            recsdk.TypeMindfulness,
			EmotionalStates: []string{"anxious"},
			Tags:            []string{"breathing"},
			TimeToComplete:  5,
		},
		{
			ID:              "sleep-1",
			Title:           "Sleep Hygiene",
			Type:            recsdk.TypeContent,
			EmotionalStates: []string{"tired"},
			Tags:            []string{"sleep"},
			TimeToComplete:  10,
		},
	}
}

func newTestRouter(t *testing.T, catalog recsdk.CatalogStore, states recsdk.UserStateStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testLogger()

	var source recsdk.CatalogSource
	if catalog != nil {
		source = catalog
	}
	var recorder *recsdk.InteractionRecorder
	if states != nil {
		recorder = recsdk.NewInteractionRecorder(states, 0, nil)
	}

	cfg := RouterConfig{
		RecommendHandler: NewRecommendHandler(log, nil, source),
		HealthHandler:    NewHealthHandler(catalog),
	}
	if recorder != nil {
		cfg.FeedbackHandler = NewFeedbackHandler(log, recorder)
	}
	return NewRouter(cfg)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body == "" {
		rdr = bytes.NewReader(nil)
	} else {
		rdr = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ══════════════════════════════════════════════
// POST /recommend
// ══════════════════════════════════════════════

func TestRecommend_MissingUserState(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	for _, body := range []string{"", "{}", "not json", `{"catalog":[]}`} {
		w := doJSON(t, router, http.MethodPost, "/recommend", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
		if !strings.Contains(w.Body.String(), "User state is required") {
			t.Fatalf("body %q: unexpected error body %s", body, w.Body.String())
		}
	}
}

func TestRecommend_WithRequestCatalog(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	reqBody, _ := json.Marshal(RecommendRequest{
		Catalog:   testCatalog(),
		UserState: &recsdk.UserState{EmotionalState: "anxious"},
	})
	w := doJSON(t, router, http.MethodPost, "/recommend", string(reqBody))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var items []recsdk.ContentItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "anxiety-1" {
		t.Fatalf("anxious user should get anxiety-1 first, got %s", items[0].ID)
	}
}

func TestRecommend_FromStoreSnapshot(t *testing.T) {
	catalog := recsdk.NewInMemoryCatalogStore(testCatalog()...)
	router := newTestRouter(t, catalog, nil)

	w := doJSON(t, router, http.MethodPost, "/recommend", `{"userState":{"emotionalState":"tired"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var items []recsdk.ContentItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) == 0 || items[0].ID != "sleep-1" {
		t.Fatalf("tired user should get sleep-1 first, got %v", items)
	}
}

func TestRecommend_NoCatalogAnywhere(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	w := doJSON(t, router, http.MethodPost, "/recommend", `{"userState":{}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Catalog is required") {
		t.Fatalf("unexpected error body: %s", w.Body.String())
	}
}

func TestRecommend_NegativeTopN(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	reqBody := `{"userState":{},"catalog":[],"topN":-1}`
	w := doJSON(t, router, http.MethodPost, "/recommend", reqBody)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "non-negative") {
		t.Fatalf("unexpected error body: %s", w.Body.String())
	}
}

func TestRecommend_TopNLimitsResults(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	reqBody, _ := json.Marshal(RecommendRequest{
		Catalog:   testCatalog(),
		UserState: &recsdk.UserState{},
		TopN:      intPtr(1),
	})
	w := doJSON(t, router, http.MethodPost, "/recommend", string(reqBody))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var items []recsdk.ContentItem
	_ = json.Unmarshal(w.Body.Bytes(), &items)
	if len(items) != 1 {
		t.Fatalf("topN=1 must cap results, got %d", len(items))
	}
}

func TestRecommend_Formatted(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	reqBody, _ := json.Marshal(RecommendRequest{
		Catalog:   testCatalog(),
		UserState: &recsdk.UserState{Name: "Amina", EmotionalState: "anxious"},
		TopN:      intPtr(1),
		Format:    true,
	})
	w := doJSON(t, router, http.MethodPost, "/recommend", string(reqBody))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var msgs []recsdk.RecommendationMessage
	if err := json.Unmarshal(w.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	msg := msgs[0]
	if msg.ID != "anxiety-1" {
		t.Fatalf("expected anxiety-1, got %s", msg.ID)
	}
	if msg.PersonalGreeting != "Amina, " {
		t.Fatalf("unexpected greeting %q", msg.PersonalGreeting)
	}
	if msg.ActionURL != "/content/anxiety-1" {
		t.Fatalf("unexpected action url %q", msg.ActionURL)
	}
}

func TestRecommend_ExcludesIneligible(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	reqBody, _ := json.Marshal(RecommendRequest{
		Catalog:   testCatalog(),
		UserState: &recsdk.UserState{CompletedCards: []string{"anxiety-1"}},
	})
	w := doJSON(t, router, http.MethodPost, "/recommend", string(reqBody))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var items []recsdk.ContentItem
	_ = json.Unmarshal(w.Body.Bytes(), &items)
	for _, it := range items {
		if it.ID == "anxiety-1" {
			t.Fatal("completed item must not be recommended")
		}
	}
}

func TestRecommend_SnapshotErrorBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(RouterConfig{
		RecommendHandler: NewRecommendHandler(testLogger(), nil, failingSource{}),
	})

	w := doJSON(t, router, http.MethodPost, "/recommend", `{"userState":{}}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Failed to get recommendations") {
		t.Fatalf("unexpected error body: %s", w.Body.String())
	}
}

func TestRecommend_PanicKeepsErrorBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(RouterConfig{
		Log:              testLogger(),
		RecommendHandler: NewRecommendHandler(testLogger(), nil, panicSource{}),
	})

	w := doJSON(t, router, http.MethodPost, "/recommend", `{"userState":{}}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Failed to get recommendations") {
		t.Fatalf("panic must answer with the fixed error body, got: %s", w.Body.String())
	}
}

func TestHandlers_NilLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	states := recsdk.NewInMemoryUserStateStore()
	router := NewRouter(RouterConfig{
		RecommendHandler: NewRecommendHandler(nil, nil, nil),
		FeedbackHandler:  NewFeedbackHandler(nil, recsdk.NewInteractionRecorder(states, 0, nil)),
	})

	reqBody, _ := json.Marshal(RecommendRequest{
		Catalog:   testCatalog(),
		UserState: &recsdk.UserState{},
	})
	if w := doJSON(t, router, http.MethodPost, "/recommend", string(reqBody)); w.Code != http.StatusOK {
		t.Fatalf("recommend with nil logger: expected 200, got %d", w.Code)
	}
	body := `{"userId":"u1","interactions":[{"itemId":"a","kind":"viewed"}]}`
	if w := doJSON(t, router, http.MethodPost, "/feedback", body); w.Code != http.StatusOK {
		t.Fatalf("feedback with nil logger: expected 200, got %d", w.Code)
	}
}

// ══════════════════════════════════════════════
// POST /feedback
// ══════════════════════════════════════════════

func TestFeedback_MissingUserID(t *testing.T) {
	states := recsdk.NewInMemoryUserStateStore()
	router := newTestRouter(t, nil, states)

	for _, body := range []string{"", "{}", `{"interactions":[]}`} {
		w := doJSON(t, router, http.MethodPost, "/feedback", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
		if !strings.Contains(w.Body.String(), "User ID is required") {
			t.Fatalf("body %q: unexpected error body %s", body, w.Body.String())
		}
	}
}

func TestFeedback_RecordsInteractions(t *testing.T) {
	states := recsdk.NewInMemoryUserStateStore()
	router := newTestRouter(t, nil, states)

	body := `{"userId":"u1","interactions":[{"itemId":"anxiety-1","kind":"completed"}]}`
	w := doJSON(t, router, http.MethodPost, "/feedback", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"success":true`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}

	state, ok, err := states.Get(context.Background(), "u1")
	if err != nil || !ok {
		t.Fatalf("state not stored: ok=%v err=%v", ok, err)
	}
	if !state.Completed("anxiety-1") {
		t.Fatalf("completion not recorded: %+v", state)
	}
}

// ══════════════════════════════════════════════
// GET /healthcheck
// ══════════════════════════════════════════════

func TestHealthCheck(t *testing.T) {
	catalog := recsdk.NewInMemoryCatalogStore(testCatalog()...)
	router := newTestRouter(t, catalog, nil)

	w := doJSON(t, router, http.MethodGet, "/healthcheck", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("unexpected status %v", resp["status"])
	}
	if n, _ := resp["catalogItems"].(float64); int(n) != 2 {
		t.Fatalf("expected catalogItems 2, got %v", resp["catalogItems"])
	}
}

func TestHealthCheck_NoCatalog(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	w := doJSON(t, router, http.MethodGet, "/healthcheck", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func intPtr(n int) *int { return &n }
