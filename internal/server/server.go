// Package server exposes a linked database over a read-only HTTP API.
package server

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/mesh-intelligence/neo/internal/database"
	"github.com/mesh-intelligence/neo/internal/filters"
	"github.com/mesh-intelligence/neo/internal/write"
	"github.com/mesh-intelligence/neo/pkg/types"
)

// DefaultLimit caps /v1/approaches when no limit parameter is given.
const DefaultLimit = 100

// Handler serves lookups and queries. Each request reads one database
// snapshot; Replace swaps in a new one without blocking requests.
type Handler struct {
	db atomic.Pointer[database.Database]
}

func NewHandler(db *database.Database) *Handler {
	h := &Handler{}
	h.db.Store(db)
	return h
}

// Replace makes db the database for subsequent requests.
func (h *Handler) Replace(db *database.Database) {
	h.db.Store(db)
}

// Options tunes the router. The zero value serves without rate limiting.
type Options struct {
	// RateLimit is the sustained number of requests per second across all
	// clients; 0 disables limiting.
	RateLimit float64
	// Burst is the number of requests allowed at once. Values below 1 are
	// treated as 1.
	Burst int
}

// NewRouter returns a gin engine with the API routes registered.
func NewRouter(h *Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	if opts.RateLimit > 0 {
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.Burst, 1))))
	}
	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	v1 := r.Group("/v1")
	{
		v1.GET("/stats", h.Stats)
		v1.GET("/neos", h.NEOByName)
		v1.GET("/neos/:designation", h.NEOByDesignation)
		v1.GET("/approaches", h.Approaches)
	}
}

// neoResponse is an NEO with the number of linked approaches.
type neoResponse struct {
	write.NEORecord
	Approaches int `json:"approaches"`
}

func newNEOResponse(neo *types.NearEarthObject) neoResponse {
	return neoResponse{NEORecord: write.NewNEORecord(neo), Approaches: len(neo.Approaches)}
}

// Stats: GET /v1/stats
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.db.Load().Stats())
}

// NEOByDesignation: GET /v1/neos/:designation
func (h *Handler) NEOByDesignation(c *gin.Context) {
	neo, ok := h.db.Load().GetByDesignation(c.Param("designation"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no matching NEO"})
		return
	}
	c.JSON(http.StatusOK, newNEOResponse(neo))
}

// NEOByName: GET /v1/neos?name=Eros
func (h *Handler) NEOByName(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name parameter"})
		return
	}
	neo, ok := h.db.Load().GetByName(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no matching NEO"})
		return
	}
	c.JSON(http.StatusOK, newNEOResponse(neo))
}

// Approaches: GET /v1/approaches?max_distance=0.1&hazardous=true&limit=10
func (h *Handler) Approaches(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, err := parseLimit(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data := []write.Record{}
	for ca := range filters.Limit(h.db.Load().Query(filters.Create(criteria)...), limit) {
		data = append(data, write.NewRecord(ca))
	}

	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{
			"count":   len(data),
			"limit":   limit,
			"filters": criteria.String(),
		},
		"data": data,
	})
}

// parseCriteria reads the optional criteria query parameters. An absent or
// empty parameter leaves its criterion unset.
func parseCriteria(c *gin.Context) (filters.Criteria, error) {
	var crit filters.Criteria
	var err error

	if crit.Date, err = dateParam(c, "date"); err != nil {
		return crit, err
	}
	if crit.StartDate, err = dateParam(c, "start_date"); err != nil {
		return crit, err
	}
	if crit.EndDate, err = dateParam(c, "end_date"); err != nil {
		return crit, err
	}

	nums := []struct {
		param string
		dst   **float64
	}{
		{"min_distance", &crit.DistanceMin},
		{"max_distance", &crit.DistanceMax},
		{"min_velocity", &crit.VelocityMin},
		{"max_velocity", &crit.VelocityMax},
		{"min_diameter", &crit.DiameterMin},
		{"max_diameter", &crit.DiameterMax},
	}
	for _, n := range nums {
		raw := c.Query(n.param)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return crit, errors.Wrapf(types.ErrInvalidCriterion, "%s %q", n.param, raw)
		}
		*n.dst = &v
	}

	if raw := c.Query("hazardous"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return crit, errors.Wrapf(types.ErrInvalidCriterion, "hazardous %q", raw)
		}
		crit.Hazardous = &v
	}

	return crit, crit.Validate()
}

func dateParam(c *gin.Context, param string) (*time.Time, error) {
	raw := c.Query(param)
	if raw == "" {
		return nil, nil
	}
	d, err := filters.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseLimit(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.Wrapf(types.ErrInvalidCriterion, "limit %q must be a non-negative integer", raw)
	}
	return n, nil
}
