package bridge

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/medularis/go-asterisk/internal/auth"
	"github.com/medularis/go-asterisk/internal/observability"
	"github.com/medularis/go-asterisk/protocol"
)

// Session is the slice of the manager surface the bridge drives.
type Session interface {
	SendAction(fields protocol.Fields) (*protocol.Message, error)
	IsConnected() bool
	IsRunning() bool
	Title() string
	Version() string
}

type Config struct {
	Service     string
	CorsOrigins []string
	EventBuffer int

	// ActionToken, when set, gates POST /actions behind a shared
	// bearer token. Read-only endpoints stay open.
	ActionToken string
}

func (c Config) withDefaults() Config {
	if c.Service == "" {
		c.Service = "amibridge"
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 256
	}
	return c
}

// Server serves session state and action passthrough over HTTP.
type Server struct {
	cfg       Config
	log       zerolog.Logger
	session   Session
	ring      *eventRing
	router    *gin.Engine
	startedAt time.Time
}

func New(cfg Config, session Session, log zerolog.Logger) *Server {
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:       cfg,
		log:       log,
		session:   session,
		ring:      newEventRing(cfg.EventBuffer),
		startedAt: time.Now(),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log))
	r.Use(observability.RequestMetricsMiddleware(cfg.Service))
	if len(cfg.CorsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CorsOrigins,
			AllowMethods: []string{"GET", "POST"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	r.GET("/health", s.handleHealth)
	r.GET("/events", s.handleEvents)
	r.POST("/actions", requireToken(cfg.ActionToken), s.handleAction)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router = r
	return s
}

// Router exposes the gin engine so callers can serve or test it.
func (s *Server) Router() *gin.Engine { return s.router }

func (s *Server) Run(addr string) error { return s.router.Run(addr) }

// Observe records an event into the ring. Safe from any goroutine.
func (s *Server) Observe(ev *protocol.Event) {
	headers := make(map[string]string, len(ev.Headers))
	for k, v := range ev.Headers {
		headers[k] = v
	}
	s.ring.add(EventRecord{Name: ev.Name, Received: time.Now(), Headers: headers})
	observability.RecordEvent(s.cfg.Service, ev.Name)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   s.cfg.Service,
		"uptime":    time.Since(s.startedAt).String(),
		"connected": s.session.IsConnected(),
		"running":   s.session.IsRunning(),
		"title":     s.session.Title(),
		"version":   s.session.Version(),
	})
}

func (s *Server) handleEvents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"seen":   s.ring.seen(),
		"events": s.ring.snapshot(),
	})
}

func requireToken(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) { c.Next() }
	}
	validator := auth.StaticToken{Token: token}
	return func(c *gin.Context) {
		presented, err := auth.FromHeader(c.GetHeader("Authorization"))
		if err == nil {
			err = validator.Validate(presented)
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  err.Error(),
			})
			return
		}
		c.Next()
	}
}

type actionRequest struct {
	Action  string              `json:"action" binding:"required"`
	Headers map[string][]string `json:"headers"`
}

func (s *Server) handleAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}
	fields := protocol.Fields{}
	fields.Set("Action", req.Action)
	for k, vs := range req.Headers {
		for _, v := range vs {
			fields.Add(k, v)
		}
	}
	start := time.Now()
	resp, err := s.session.SendAction(fields)
	observability.RecordAction(s.cfg.Service, req.Action, time.Since(start), err == nil)
	if err != nil {
		s.log.Warn().Str("action", req.Action).Err(err).Msg("action failed")
		c.JSON(http.StatusBadGateway, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"headers": resp.Headers,
		"data":    resp.Data,
	})
}
