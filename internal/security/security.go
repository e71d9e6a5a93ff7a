package security

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"
)

// GitHub caps usernames at 39 characters
const maxUsernameLength = 39

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*[a-zA-Z0-9]$`)

// Config holds security configuration
type Config struct {
	MaxInputLength    int           `json:"max_input_length"`
	MaxRequestsPerMin int           `json:"max_requests_per_min"`
	TrustedProxies    []string      `json:"trusted_proxies"`
	RequestTimeout    time.Duration `json:"request_timeout"`
}

// DefaultConfig returns secure defaults
func DefaultConfig() Config {
	return Config{
		MaxInputLength:    200,
		MaxRequestsPerMin: 60,
		TrustedProxies:    []string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"},
		RequestTimeout:    30 * time.Second,
	}
}

// Middleware provides input validation, rate limiting, and security headers
type Middleware struct {
	config   Config
	validate *validator.Validate

	ipLimiters map[string]*rate.Limiter
	limiterMu  sync.Mutex
}

// NewMiddleware creates a new security middleware instance
func NewMiddleware(config Config) *Middleware {
	return &Middleware{
		config:     config,
		validate:   validator.New(),
		ipLimiters: make(map[string]*rate.Limiter),
	}
}

// ValidateInput performs input validation before parsing
func (m *Middleware) ValidateInput(input string) error {
	if err := m.validate.Var(input, fmt.Sprintf("required,max=%d", m.config.MaxInputLength)); err != nil {
		return fmt.Errorf("input must be between 1 and %d characters", m.config.MaxInputLength)
	}

	if strings.Contains(input, "\x00") {
		return fmt.Errorf("input contains invalid characters")
	}

	if !utf8.ValidString(input) {
		return fmt.Errorf("input contains invalid UTF-8 encoding")
	}

	return nil
}

// ValidateUsername validates a GitHub username
func (m *Middleware) ValidateUsername(username string) error {
	if err := m.validate.Var(username, fmt.Sprintf("required,max=%d", maxUsernameLength)); err != nil {
		return fmt.Errorf("username must be between 1 and %d characters", maxUsernameLength)
	}

	if strings.Contains(username, "..") || strings.Contains(username, "--") {
		return fmt.Errorf("invalid GitHub username format")
	}

	// Single-character usernames are valid if alphanumeric
	if len(username) == 1 {
		c := username[0]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return nil
		}
		return fmt.Errorf("invalid GitHub username format")
	}

	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("invalid GitHub username format")
	}

	return nil
}

// SanitizeInput strips markup and collapses whitespace in user input
func (m *Middleware) SanitizeInput(input string) string {
	input = strings.TrimSpace(input)

	scriptPattern := regexp.MustCompile(`(?i)<script[^>]*>.*?</script>`)
	input = scriptPattern.ReplaceAllString(input, "")

	htmlTagPattern := regexp.MustCompile(`<[^>]+>`)
	input = htmlTagPattern.ReplaceAllString(input, "")

	input = regexp.MustCompile(`\s+`).ReplaceAllString(input, " ")

	return input
}

// RateLimitByIP implements per-IP rate limiting
func (m *Middleware) RateLimitByIP(c *gin.Context) {
	clientIP := c.ClientIP()

	m.limiterMu.Lock()
	limiter, exists := m.ipLimiters[clientIP]
	if !exists {
		rps := rate.Limit(float64(m.config.MaxRequestsPerMin) / 60.0)
		burst := m.config.MaxRequestsPerMin / 2
		if burst < 5 {
			burst = 5
		}
		limiter = rate.NewLimiter(rps, burst)
		m.ipLimiters[clientIP] = limiter
	}
	m.limiterMu.Unlock()

	if !limiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded for IP",
			"retry_after": "60",
		})
		c.Abort()
		return
	}

	c.Next()
}

// SecurityHeaders adds security headers to responses
func (m *Middleware) SecurityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("X-XSS-Protection", "1; mode=block")
	c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
	c.Header("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'")

	if c.Request.TLS != nil {
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}

	c.Next()
}

// ValidateContentType validates request content type
func (m *Middleware) ValidateContentType(c *gin.Context) {
	contentType := c.GetHeader("Content-Type")

	allowedTypes := []string{
		"application/json",
		"application/x-www-form-urlencoded",
	}

	if contentType != "" && c.Request.Method == http.MethodPost {
		found := false
		for _, allowed := range allowedTypes {
			if strings.Contains(strings.ToLower(contentType), allowed) {
				found = true
				break
			}
		}

		if !found {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{
				"error": "unsupported content type",
			})
			c.Abort()
			return
		}
	}

	c.Next()
}

// RequestTimeout enforces request timeout
func (m *Middleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), m.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(m.config.RequestTimeout.Seconds())))

	c.Next()
}
