package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chickencoop_bridge/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid    = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid      = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errKindInvalid    = "invalid 'kind'"
	errSummaryInvalid = "invalid 'summary'; use true or false"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// historyQuery is the parsed form of the shared history query parameters.
type historyQuery struct {
	filter  models.HistoryFilter
	summary bool
}

// parseHistoryQuery reads from, to, summary and (when withKind) kind. It
// writes a 400 and returns false on any malformed parameter. Range order is
// checked by the service.
func (h *Handler) parseHistoryQuery(c *gin.Context, withKind bool) (historyQuery, bool) {
	var (
		q   historyQuery
		err error
	)
	if qs := c.Query("from"); qs != "" {
		q.filter.From, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return q, false
		}
	}
	// A date-only 'to' covers that whole day.
	if qs := c.Query("to"); qs != "" {
		q.filter.To, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return q, false
		}
		if isDateOnly(qs) {
			q.filter.To = q.filter.To.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if withKind {
		if qs := c.Query("kind"); qs != "" {
			kind, ok := models.ParseKind(qs)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": errKindInvalid})
				return q, false
			}
			q.filter.Kind = kind
		}
	}
	if qs := c.Query("summary"); qs != "" {
		q.summary, err = strconv.ParseBool(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errSummaryInvalid})
			return q, false
		}
	}
	return q, true
}

// @Summary      Reading history
// @Description  Decoded bus messages, newest first. Dates accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; a date-only 'to' is end of day inclusive. summary=true returns aggregates over the same rows.
// @Tags         history
// @Produce      json
// @Param        kind     query   string  false  "State kind"  Enums(temperature,fanStatus,feederStatus,cycleStatus,segmentInfo,obstacleStatus,mode,field,manualControl,feederControl)
// @Param        from     query   string  false  "Start of range"  example(2025-03-01)
// @Param        to       query   string  false  "End of range"  example(2025-03-31)
// @Param        summary  query   bool    false  "Return aggregates instead of records"
// @Success      200      {object}  map[string]interface{}  "count, readings | summary"
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      503      {object}  map[string]string
// @Router       /api/v1/history/readings [get]
// @Security     BearerAuth
func (h *Handler) listReadings(c *gin.Context) {
	q, ok := h.parseHistoryQuery(c, true)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if q.summary {
		sum, err := h.services.SummarizeReadings(ctx, q.filter)
		if err != nil {
			h.serviceError(c, "readings_summary_failed", err, "kind", q.filter.Kind)
			return
		}
		c.JSON(http.StatusOK, gin.H{"summary": sum})
		return
	}
	readings, err := h.services.ListReadings(ctx, q.filter)
	if err != nil {
		h.serviceError(c, "readings_list_failed", err, "kind", q.filter.Kind, "from", q.filter.From, "to", q.filter.To)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(readings),
		"readings": readings,
	})
}

// @Summary      Coop stats history
// @Tags         history
// @Produce      json
// @Param        from     query   string  false  "Start of range"  example(2025-03-01)
// @Param        to       query   string  false  "End of range"  example(2025-03-31)
// @Param        summary  query   bool    false  "Return sums instead of records"
// @Success      200      {object}  map[string]interface{}  "count, coop_stats | summary"
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      503      {object}  map[string]string
// @Router       /api/v1/history/coop-stats [get]
// @Security     BearerAuth
func (h *Handler) listCoopStats(c *gin.Context) {
	q, ok := h.parseHistoryQuery(c, false)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if q.summary {
		sum, err := h.services.SummarizeCoopStats(ctx, q.filter)
		if err != nil {
			h.serviceError(c, "coop_stats_summary_failed", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"summary": sum})
		return
	}
	stats, err := h.services.ListCoopStats(ctx, q.filter)
	if err != nil {
		h.serviceError(c, "coop_stats_list_failed", err, "from", q.filter.From, "to", q.filter.To)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":      len(stats),
		"coop_stats": stats,
	})
}

// @Summary      Sales history
// @Tags         history
// @Produce      json
// @Param        from     query   string  false  "Start of range"  example(2025-03-01)
// @Param        to       query   string  false  "End of range"  example(2025-03-31)
// @Param        summary  query   bool    false  "Return sums instead of records"
// @Success      200      {object}  map[string]interface{}  "count, sales | summary"
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      503      {object}  map[string]string
// @Router       /api/v1/history/sales [get]
// @Security     BearerAuth
func (h *Handler) listSales(c *gin.Context) {
	q, ok := h.parseHistoryQuery(c, false)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if q.summary {
		sum, err := h.services.SummarizeSales(ctx, q.filter)
		if err != nil {
			h.serviceError(c, "sales_summary_failed", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"summary": sum})
		return
	}
	sales, err := h.services.ListSales(ctx, q.filter)
	if err != nil {
		h.serviceError(c, "sales_list_failed", err, "from", q.filter.From, "to", q.filter.To)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(sales),
		"sales": sales,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-03-01T06:30:00Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
