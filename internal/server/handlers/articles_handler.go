package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sygemat/provider-portal/internal/config"
	"github.com/sygemat/provider-portal/internal/domain/models"
	"github.com/sygemat/provider-portal/internal/service/articles"
)

// ArticlesHandler serves the filtered, sorted catalog view.
type ArticlesHandler struct {
	svc    *articles.Service
	cfg    config.ArticlesConfig
	logger *zap.Logger
}

// NewArticlesHandler constructs the HTTP handler adapter.
func NewArticlesHandler(svc *articles.Service, cfg config.ArticlesConfig, logger *zap.Logger) *ArticlesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArticlesHandler{svc: svc, cfg: cfg, logger: logger}
}

type articlesRequest struct {
	Proveedor      int    `json:"proveedor"`
	Refresh        bool   `json:"refresh"`
	Retry          bool   `json:"retry"`
	Search         string `json:"search"`
	Stock          string `json:"stock"`
	ProviderFilter int    `json:"provider_filter"`
	SortBy         string `json:"sort_by"`
	SortOrder      string `json:"sort_order"`
}

type articlesResponse struct {
	Count      int               `json:"count"`
	TotalCount int               `json:"total_count"`
	Articles   []models.Article  `json:"art_prv_web_dis"`
	Providers  []models.Provider `json:"providers,omitempty"`
}

// List returns the provider's catalog after the filter/sort pipeline. Every
// failure keeps the fixed envelope shape so the caller never needs a second
// deserialization path.
func (h *ArticlesHandler) List(c *gin.Context) {
	var req articlesRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Proveedor == 0 {
		h.logger.Warn("invalid articles payload", zap.Error(err))
		writeArticlesError(c, http.StatusBadRequest, "ID de proveedor es requerido")
		return
	}

	result, err := h.svc.Fetch(c.Request.Context(), req.Proveedor, articles.FetchOptions{
		Refresh: req.Refresh,
		Retry:   req.Retry,
	})
	if err != nil {
		h.logger.Error("catalog fetch failed",
			zap.Int("provider", req.Proveedor),
			zap.String("kind", string(models.KindOf(err))),
			zap.Error(err))
		writeArticlesError(c, http.StatusInternalServerError, "Error al cargar artículos")
		return
	}

	isAdmin := req.Proveedor == h.cfg.AdminProviderID

	query := articles.Query{
		Search: req.Search,
		Stock:  articles.ParseStockBucket(req.Stock),
		SortBy: articles.ParseSortColumn(req.SortBy),
		Order:  articles.ParseSortOrder(req.SortOrder),
	}
	if isAdmin {
		query.ProviderID = req.ProviderFilter
	}

	filtered := articles.Apply(result.Articles, query)

	resp := articlesResponse{
		Count:      len(filtered),
		TotalCount: result.TotalCount,
		Articles:   filtered,
	}
	if isAdmin {
		resp.Providers = articles.DeriveProviders(result.Articles)
	}

	c.JSON(http.StatusOK, resp)
}

func writeArticlesError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error":           message,
		"count":           0,
		"total_count":     0,
		"art_prv_web_dis": []models.Article{},
	})
}
