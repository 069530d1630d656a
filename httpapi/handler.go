package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	goRecover "github.com/MrEthical07/goRecover"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

const requestIDHeader = "X-Request-Id"

// Recovery is the subset of *goRecover.Engine the handlers drive.
type Recovery interface {
	CheckUserByEmail(ctx context.Context, email string) (goRecover.Result, error)
	CheckCooldown(ctx context.Context, email string) (goRecover.Result, error)
	IssueResetToken(ctx context.Context, email string) (goRecover.Result, error)
	CheckTokenAvailable(ctx context.Context, token string) (bool, error)
	RedeemResetToken(ctx context.Context, token, newPassword string) (goRecover.Result, error)
}

// Throttle limits requests per client. Allow returns the time to wait along
// with its error when a request is refused.
type Throttle interface {
	Allow(ctx context.Context, key string) (time.Duration, error)
}

// Response is the JSON body of every 200 answer.
type Response struct {
	Success                  bool                `json:"success"`
	Code                     goRecover.ErrorCode `json:"code,omitempty"`
	Message                  string              `json:"message,omitempty"`
	User                     *goRecover.UserView `json:"user,omitempty"`
	CooldownRemainingSeconds int64               `json:"cooldownRemainingSeconds,omitempty"`
	MinLength                int                 `json:"minLength,omitempty"`
	MaxLength                int                 `json:"maxLength,omitempty"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Handler serves the password recovery routes.
type Handler struct {
	recovery  Recovery
	logger    *log.Logger
	throttle  Throttle
	isLimited func(error) bool
}

// New returns a Handler over r. A nil logger disables error logging.
func New(r Recovery, logger *log.Logger) *Handler {
	return &Handler{recovery: r, logger: logger}
}

// WithThrottle limits every route per client IP. isLimited tells a refused
// request apart from a throttle failure; failures let the request through.
func (h *Handler) WithThrottle(t Throttle, isLimited func(error) bool) *Handler {
	h.throttle = t
	h.isLimited = isLimited
	return h
}

// Register mounts the routes on g.
func (h *Handler) Register(g gin.IRoutes) {
	g.Use(requestContext())
	if h.throttle != nil {
		g.Use(h.limit())
	}
	g.GET("/check", h.checkUser)
	g.GET("/check_disable", h.checkCooldown)
	g.POST("/send_reset_email", h.sendResetEmail)
	g.GET("/reset_page/:token", h.resetPage)
	g.POST("/reset", h.reset)
}

// requestContext carries the client IP and a request id into the engine
// context so its log lines can be correlated.
func requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		ctx := goRecover.WithClientIP(c.Request.Context(), c.ClientIP())
		ctx = goRecover.WithRequestID(ctx, id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (h *Handler) limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		wait, err := h.throttle.Allow(c.Request.Context(), c.ClientIP())
		if err == nil {
			c.Next()
			return
		}
		if h.isLimited == nil || !h.isLimited(err) {
			if h.logger != nil {
				h.logger.Warnf("throttle unavailable, allowing request: %v", err)
			}
			c.Next()
			return
		}
		c.Header("Retry-After", strconv.FormatInt(ceilSeconds(wait), 10))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	}
}

func (h *Handler) checkUser(c *gin.Context) {
	res, err := h.recovery.CheckUserByEmail(c.Request.Context(), c.Query("email"))
	h.respond(c, res, err)
}

func (h *Handler) checkCooldown(c *gin.Context) {
	res, err := h.recovery.CheckCooldown(c.Request.Context(), c.Query("email"))
	h.respond(c, res, err)
}

func (h *Handler) sendResetEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	res, err := h.recovery.IssueResetToken(c.Request.Context(), req.Email)
	h.respond(c, res, err)
}

func (h *Handler) resetPage(c *gin.Context) {
	ok, err := h.recovery.CheckTokenAvailable(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.fail(c, "reset_page", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": ok})
}

func (h *Handler) reset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token and password are required"})
		return
	}

	res, err := h.recovery.RedeemResetToken(c.Request.Context(), req.Token, req.Password)
	h.respond(c, res, err)
}

func (h *Handler) respond(c *gin.Context, res goRecover.Result, err error) {
	if err != nil {
		h.fail(c, c.FullPath(), err)
		return
	}
	c.JSON(http.StatusOK, toResponse(res))
}

func (h *Handler) fail(c *gin.Context, route string, err error) {
	if h.logger != nil {
		h.logger.Errorf("route=%s req=%s: %v", route, c.Writer.Header().Get(requestIDHeader), err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func toResponse(res goRecover.Result) Response {
	out := Response{
		Success:   res.Success,
		Code:      res.Code,
		Message:   res.Message,
		User:      res.User,
		MinLength: res.MinLength,
		MaxLength: res.MaxLength,
	}
	if res.CooldownRemaining > 0 {
		out.CooldownRemainingSeconds = ceilSeconds(res.CooldownRemaining)
	}
	return out
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64((d + time.Second - 1) / time.Second)
}
