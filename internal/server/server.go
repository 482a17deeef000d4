package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hniuh721/aom-screening-app/internal/screening"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Screener     *screening.Screener
	DB           HealthChecker
	Logger       zerolog.Logger
	MaxBodyBytes int64
	CORSOrigins  []string
}

type handler struct {
	screener *screening.Screener
	db       HealthChecker
	log      zerolog.Logger
}

func NewRouter(opts Options) *gin.Engine {
	if opts.Screener == nil {
		opts.Screener = screening.NewScreener(nil)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	h := &handler{screener: opts.Screener, db: opts.DB, log: opts.Logger}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(opts.Logger),
		limitBodySize(opts.MaxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins: opts.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", h.readyz)

	api := router.Group("/api/screening")
	api.POST("/run", h.runScreening)
	api.GET("/catalog", h.catalog)
	api.GET("/rules", h.rules)

	return router
}

func (h *handler) readyz(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled", "rules": h.screener.Rules().Version()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"db":     fmt.Sprintf("unhealthy: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok", "rules": h.screener.Rules().Version()})
}

func (h *handler) catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"medications": screening.Catalog()})
}

type ruleView struct {
	Condition string   `json:"condition"`
	Status    string   `json:"status,omitempty"`
	Tier      string   `json:"tier"`
	Drugs     []string `json:"drugs"`
	Reason    string   `json:"reason"`
}

func (h *handler) rules(c *gin.Context) {
	table := h.screener.Rules()
	entries := table.Entries()
	views := make([]ruleView, 0, len(entries))
	for _, e := range entries {
		v := ruleView{
			Condition: string(e.Condition),
			Tier:      e.Tier.String(),
			Reason:    e.Reason,
			Drugs:     make([]string, 0, len(e.Drugs)),
		}
		if e.Qualified {
			v.Status = e.Status.String()
		}
		for _, d := range e.Drugs {
			v.Drugs = append(v.Drugs, d.String())
		}
		views = append(views, v)
	}
	c.JSON(http.StatusOK, gin.H{"version": table.Version(), "rules": views})
}
