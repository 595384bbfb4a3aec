package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	customerrors "github.com/axellelanca/urlalias/internal/errors"
	"github.com/axellelanca/urlalias/internal/models"
	"github.com/axellelanca/urlalias/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	defaultPage    = 1
	defaultPerPage = 10
)

// HealthCheckHandler handles the /health route to verify service status
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateAliasRequest is the JSON body of POST /.
type CreateAliasRequest struct {
	OrigURL string `json:"orig_url"`
}

// AliasResponse is the public representation of an alias.
type AliasResponse struct {
	URL        string    `json:"url"`
	OrigURL    string    `json:"orig_url"`
	CreateTime time.Time `json:"create_time"`
	ExpireTime time.Time `json:"expire_time"`
	IsActive   bool      `json:"is_active"`
}

// ListAliasesResponse is one page of GET /.
type ListAliasesResponse struct {
	Items      []AliasResponse `json:"items"`
	TotalItems int64           `json:"total_items"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
}

// StatsResponse is one row of GET /stats.
type StatsResponse struct {
	URL            string `json:"url"`
	OrigURL        string `json:"orig_url"`
	LastHourClicks int64  `json:"last_hour_clicks"`
	LastDayClicks  int64  `json:"last_day_clicks"`
}

func toAliasResponse(aliasService *services.AliasService, alias *models.Alias) AliasResponse {
	return AliasResponse{
		URL:        aliasService.FullURL(alias.Code),
		OrigURL:    alias.TargetURL,
		CreateTime: alias.CreatedAt,
		ExpireTime: alias.ExpiresAt,
		IsActive:   alias.IsActive,
	}
}

// CreateAliasHandler creates a new alias for orig_url.
func CreateAliasHandler(aliasService *services.AliasService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateAliasRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		alias, err := aliasService.CreateAlias(c.Request.Context(), req.OrigURL)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toAliasResponse(aliasService, alias))
	}
}

// ListAliasesHandler lists aliases page by page, optionally filtered on is_active.
func ListAliasesHandler(aliasService *services.AliasService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := intQuery(c, "page", defaultPage)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer"})
			return
		}
		perPage, err := intQuery(c, "per_page", defaultPerPage)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "per_page must be an integer"})
			return
		}

		var isActive *bool
		if raw, ok := c.GetQuery("is_active"); ok {
			v, valid := services.ParseBoolFlag(raw)
			if !valid {
				c.JSON(http.StatusBadRequest, gin.H{"error": "is_active must be one of true, 1, yes, false, 0, no"})
				return
			}
			isActive = &v
		}

		result, err := aliasService.ListAliases(c.Request.Context(), page, perPage, isActive)
		if err != nil {
			respondError(c, err)
			return
		}

		items := make([]AliasResponse, 0, len(result.Items))
		for i := range result.Items {
			items = append(items, toAliasResponse(aliasService, &result.Items[i]))
		}
		c.JSON(http.StatusOK, ListAliasesResponse{
			Items:      items,
			TotalItems: result.TotalItems,
			Page:       result.Page,
			TotalPages: result.TotalPages,
		})
	}
}

// RedirectHandler resolves a code and redirects to its target, recording a click.
func RedirectHandler(resolver *services.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, err := resolver.Resolve(c.Request.Context(), c.Param("code"), models.ClickMeta{
			UserAgent: c.GetHeader("User-Agent"),
			IPAddress: c.ClientIP(),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.Redirect(http.StatusFound, target)
	}
}

// DeactivateAliasHandler switches an alias off.
func DeactivateAliasHandler(aliasService *services.AliasService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := aliasService.DeactivateAlias(c.Request.Context(), c.Param("code")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "URL deactivated"})
	}
}

// StatsHandler returns the last hour and last day click counts of every alias.
func StatsHandler(statsService *services.StatsService, aliasService *services.AliasService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := statsService.ComputeStats(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}

		resp := make([]StatsResponse, 0, len(rows))
		for _, row := range rows {
			resp = append(resp, StatsResponse{
				URL:            aliasService.FullURL(row.Code),
				OrigURL:        row.TargetURL,
				LastHourClicks: row.LastHourClicks,
				LastDayClicks:  row.LastDayClicks,
			})
		}
		c.JSON(http.StatusOK, resp)
	}
}

// respondError maps service errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, customerrors.ErrInvalidURL),
		errors.Is(err, customerrors.ErrInvalidPagination),
		errors.Is(err, customerrors.ErrGenerationExhausted):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, customerrors.ErrAliasNotFound),
		errors.Is(err, customerrors.ErrAliasExpired),
		errors.Is(err, customerrors.ErrAliasDeactivated):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, customerrors.ErrAliasConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
	}
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
