package service

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	recsdk "github.com/betterwithin/recommend-sdk-go"
)

// Error bodies are fixed strings: internals never leak to callers.
const (
	errUserStateRequired = "User state is required"
	errUserIDRequired    = "User ID is required"
	errRecommendFailed   = "Failed to get recommendations"
	errFeedbackFailed    = "Failed to record feedback"
)

// ──────────────────────────────────────────────
// RecommendHandler
// ──────────────────────────────────────────────

// RecommendRequest is the POST /recommend body. Catalog is optional; when
// absent the server's catalog store supplies the snapshot.
type RecommendRequest struct {
	Catalog   []recsdk.ContentItem `json:"catalog,omitempty"`
	UserState *recsdk.UserState    `json:"userState"`
	TopN      *int                 `json:"topN,omitempty"`
	Format    bool                 `json:"format,omitempty"`
}

// RecommendHandler serves ranked recommendations.
type RecommendHandler struct {
	log         *Logger
	recommender *recsdk.Recommender
	catalog     recsdk.CatalogSource
}

// NewRecommendHandler creates the handler. log may be nil (logging is
// dropped); catalog may be nil when every request is expected to carry
// its own catalog.
func NewRecommendHandler(log *Logger, recommender *recsdk.Recommender, catalog recsdk.CatalogSource) *RecommendHandler {
	if log == nil {
		log = NopLogger()
	}
	if recommender == nil {
		recommender = recsdk.NewRecommender(recsdk.RecommenderOptions{})
	}
	return &RecommendHandler{
		log:         log.With("handler", "recommend"),
		recommender: recommender,
		catalog:     catalog,
	}
}

// Recommend handles POST /recommend.
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserState == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errUserStateRequired})
		return
	}

	topN := recsdk.DefaultTopN
	if req.TopN != nil {
		if *req.TopN < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "topN must be non-negative"})
			return
		}
		topN = *req.TopN
	}

	catalog := req.Catalog
	if catalog == nil {
		if h.catalog == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Catalog is required"})
			return
		}
		snapshot, err := h.catalog.Snapshot(c.Request.Context())
		if err != nil {
			h.log.Error("catalog snapshot failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errRecommendFailed})
			return
		}
		catalog = snapshot
	}

	now := time.Now()
	user := *req.UserState

	if req.Format {
		msgs := h.recommender.RecommendMessages(catalog, user, topN, now)
		h.log.Debug("recommendations served", "count", len(msgs), "formatted", true)
		c.JSON(http.StatusOK, msgs)
		return
	}

	items := h.recommender.Recommend(catalog, user, topN, now)
	h.log.Debug("recommendations served", "count", len(items))
	c.JSON(http.StatusOK, items)
}

// ──────────────────────────────────────────────
// FeedbackHandler
// ──────────────────────────────────────────────

// FeedbackRequest is the POST /feedback body.
type FeedbackRequest struct {
	UserID       string               `json:"userId"`
	Interactions []recsdk.Interaction `json:"interactions"`
}

// FeedbackHandler records user interactions against the state store.
type FeedbackHandler struct {
	log      *Logger
	recorder *recsdk.InteractionRecorder
}

// NewFeedbackHandler creates the handler. log may be nil.
func NewFeedbackHandler(log *Logger, recorder *recsdk.InteractionRecorder) *FeedbackHandler {
	if log == nil {
		log = NopLogger()
	}
	return &FeedbackHandler{
		log:      log.With("handler", "feedback"),
		recorder: recorder,
	}
}

// Feedback handles POST /feedback.
func (h *FeedbackHandler) Feedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errUserIDRequired})
		return
	}

	if err := h.recorder.Record(c.Request.Context(), req.UserID, req.Interactions); err != nil {
		h.log.Error("record interactions failed", "user", req.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errFeedbackFailed})
		return
	}

	h.log.Debug("interactions recorded", "user", req.UserID, "count", len(req.Interactions))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ──────────────────────────────────────────────
// HealthHandler
// ──────────────────────────────────────────────

// HealthHandler reports liveness and catalog reachability.
type HealthHandler struct {
	catalog recsdk.CatalogStore
}

// NewHealthHandler creates the handler. catalog may be nil.
func NewHealthHandler(catalog recsdk.CatalogStore) *HealthHandler {
	return &HealthHandler{catalog: catalog}
}

// HealthCheck handles GET /healthcheck.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.catalog != nil {
		n, err := h.catalog.Len(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "catalog unreachable"})
			return
		}
		resp["catalogItems"] = n
	}
	c.JSON(http.StatusOK, resp)
}
