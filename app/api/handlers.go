package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tendersza/tender-sync/app/classify"
	"github.com/tendersza/tender-sync/app/database"
	"github.com/tendersza/tender-sync/app/ocds"
	"github.com/tendersza/tender-sync/app/source"
	"github.com/tendersza/tender-sync/app/sync"
)

func NewHandler(tenderRepo database.TenderRepository, sourceRepo database.SourceRepository,
	sourceCache *source.Cache, userAgent string) *Handler {
	return &Handler{
		tenderRepo:  tenderRepo,
		sourceRepo:  sourceRepo,
		sourceCache: sourceCache,
		userAgent:   userAgent,
	}
}

// TriggerSync runs one page-scoped sync synchronously and reports the run
// summary. Partial success is still success: only a fetch-stage failure
// produces a 500.
func (h *Handler) TriggerSync(c *gin.Context) {
	var req SyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, Envelope{
				Success:   false,
				Error:     &APIError{Code: "BAD_REQUEST", Message: "invalid request body: " + err.Error()},
				Timestamp: time.Now().UTC(),
			})
			return
		}
	}

	sourceConfig, err := h.resolveSource(req.Source)
	if err != nil {
		c.JSON(http.StatusBadRequest, Envelope{
			Success:   false,
			Error:     &APIError{Code: "BAD_REQUEST", Message: err.Error()},
			Timestamp: time.Now().UTC(),
		})
		return
	}

	pageNumber := req.PageNumber
	if pageNumber < 1 {
		pageNumber = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = sourceConfig.Settings.PageSize
	}

	client := ocds.NewClient(sourceConfig.URL, sourceConfig.APIKey, h.userAgent,
		time.Duration(sourceConfig.Settings.Timeout)*time.Second)
	orchestrator := sync.NewOrchestrator(client, h.tenderRepo)

	result, err := orchestrator.RunPage(c.Request.Context(), pageNumber, pageSize)
	if err != nil {
		var syncErr *sync.SyncError
		if errors.As(err, &syncErr) {
			slog.Error("Sync run failed at fetch stage", "source", sourceConfig.Name, "page", pageNumber, "error", err)
			c.JSON(http.StatusInternalServerError, Envelope{
				Success:   false,
				Error:     &APIError{Code: "SYNC_ERROR", Message: err.Error()},
				Timestamp: time.Now().UTC(),
			})
			return
		}
		slog.Error("Sync run failed", "source", sourceConfig.Name, "error", err)
		c.JSON(http.StatusInternalServerError, Envelope{
			Success:   false,
			Error:     &APIError{Code: "INTERNAL_ERROR", Message: err.Error()},
			Timestamp: time.Now().UTC(),
		})
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Success:   true,
		Data:      result,
		Timestamp: time.Now().UTC(),
	})
}

func (h *Handler) resolveSource(name string) (*source.Config, error) {
	if name != "" {
		return h.sourceCache.GetConfig(name)
	}

	configs := h.sourceCache.GetConfigs()
	if len(configs) == 1 {
		for _, config := range configs {
			return config, nil
		}
	}
	return nil, errors.New("source name is required when multiple sources are configured")
}

// ListTenders serves the query boundary: free-text search, facet filters,
// ranges, whitelisted sort and pagination, plus facet counts.
func (h *Handler) ListTenders(c *gin.Context) {
	q := database.SearchQuery{
		Text:      c.Query("q"),
		Province:  c.Query("province"),
		Industry:  c.Query("industry"),
		Status:    c.Query("status"),
		SortField: c.DefaultQuery("sort", "date_published"),
		SortOrder: c.DefaultQuery("order", "desc"),
	}

	q.Page = 1
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		q.Page = page
	}

	q.PageSize = 12
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "12")); err == nil && pageSizes[size] {
		q.PageSize = size
	}

	if v := c.Query("date_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			q.DateFrom = &t
		}
	}
	if v := c.Query("date_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			q.DateTo = &t
		}
	}
	if v := c.Query("value_min"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q.ValueMin = &f
		}
	}
	if v := c.Query("value_max"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q.ValueMax = &f
		}
	}

	tenders, total, err := h.tenderRepo.ListTenders(c.Request.Context(), q)
	if err != nil {
		slog.Error("Database error", "operation", "list_tenders", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	stats, err := h.tenderRepo.GetStats(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	totalPages := (total + q.PageSize - 1) / q.PageSize

	c.JSON(http.StatusOK, gin.H{
		"tenders": toTenderResponses(tenders),
		"pagination": gin.H{
			"page":        q.Page,
			"page_size":   q.PageSize,
			"total":       total,
			"total_pages": totalPages,
		},
		"facets": gin.H{
			"status":   stats.ByStatus,
			"province": stats.ByProvince,
			"industry": stats.ByIndustry,
		},
		"stats": gin.H{
			"total":       stats.Total,
			"total_value": stats.TotalValue,
		},
	})
}

// GetTender returns one tender with its document set.
func (h *Handler) GetTender(c *gin.Context) {
	ocid := c.Param("ocid")
	if ocid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing ocid parameter"})
		return
	}

	tender, err := h.tenderRepo.GetTenderByOCID(c.Request.Context(), ocid)
	if err != nil {
		slog.Error("Database error", "operation", "get_tender", "ocid", ocid, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if tender == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tender not found"})
		return
	}

	documents, err := h.tenderRepo.GetDocuments(c.Request.Context(), tender.ID)
	if err != nil {
		slog.Error("Database error", "operation", "get_documents", "ocid", ocid, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	response := toTenderResponse(*tender)
	response["documents"] = toDocumentResponses(documents)

	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.tenderRepo.GetStats(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// The fixed category list is included so facet panels can render
	// zero-count categories the counts map omits.
	c.JSON(http.StatusOK, gin.H{
		"total":               stats.Total,
		"total_value":         stats.TotalValue,
		"by_status":           stats.ByStatus,
		"by_province":         stats.ByProvince,
		"by_industry":         stats.ByIndustry,
		"industry_categories": classify.Categories(),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.tenderRepo.GetTenderCount(c.Request.Context()); err == nil {
		health["tenders"] = count
	}

	health["loaded_sources"] = h.sourceCache.GetConfigCount()

	sources := gin.H{}
	for name := range h.sourceCache.GetConfigs() {
		src, err := h.sourceRepo.GetSource(c.Request.Context(), name)
		if err != nil || src == nil {
			continue
		}
		sources[name] = gin.H{
			"last_fetched_at": src.LastFetchedAt,
			"next_fetch_at":   src.NextFetchAt,
			"last_processed":  src.LastProcessed,
			"last_failed":     src.LastFailed,
		}
	}
	health["sources"] = sources

	c.JSON(http.StatusOK, health)
}

func toTenderResponses(tenders []database.Tender) []gin.H {
	out := make([]gin.H, 0, len(tenders))
	for _, t := range tenders {
		out = append(out, toTenderResponse(t))
	}
	return out
}

func toDocumentResponses(docs []database.TenderDocument) []gin.H {
	out := make([]gin.H, 0, len(docs))
	for _, d := range docs {
		out = append(out, gin.H{
			"title":          d.Title,
			"description":    d.Description,
			"url":            d.URL,
			"format":         d.Format,
			"document_type":  d.DocumentType,
			"language":       d.Language,
			"date_published": d.DatePublished,
			"date_modified":  d.DateModified,
		})
	}
	return out
}

func toTenderResponse(t database.Tender) gin.H {
	return gin.H{
		"ocid":              t.OCID,
		"title":             t.Title,
		"description":       t.Description,
		"buyer_name":        t.BuyerName,
		"buyer_email":       t.BuyerEmail,
		"buyer_phone":       t.BuyerPhone,
		"province":          t.Province,
		"industry":          t.Industry,
		"value_amount":      t.ValueAmount,
		"currency":          t.Currency,
		"submission_method": t.SubmissionMethod,
		"date_published":    t.DatePublished,
		"date_closing":      t.DateClosing,
		"status":            t.Status,
		"updated_at":        t.UpdatedAt,
	}
}
