package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/hamed0406/pagemonitor/internal/domain"
)

const (
	DefaultTimeout = 8 * time.Second

	// maxBodyBytes caps how much of a page is kept for the content assertion.
	maxBodyBytes = 10 << 20
)

const (
	TagUp             = "UP"
	TagIssue          = "ISSUE"
	TagDown           = "DOWN"
	TagContentMissing = "CONTENT MISSING"
)

type HTTPChecker struct {
	Client *http.Client
	Logger *zap.Logger
}

func NewHTTPChecker(logger *zap.Logger, timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

// Check issues one GET against ep.URL. Elapsed time covers the request and
// reading the body.
func (h *HTTPChecker) Check(ctx context.Context, ep domain.EndpointSpec) domain.CheckResult {
	start := time.Now()
	res := domain.CheckResult{Name: ep.Name, URL: ep.URL}

	body, status, err := h.fetch(ctx, ep.URL)
	res.ElapsedMS = time.Since(start).Seconds() * 1000 // ms
	if err != nil {
		res.Error = err.Error()
		h.Logger.Error(
			fmt.Sprintf("[%s] %s – %s | error=%s after %.1fms", TagDown, ep.Name, ep.URL, res.Error, res.ElapsedMS),
			zap.String("tag", TagDown),
			zap.String("name", ep.Name),
			zap.String("url", ep.URL),
			zap.String("error", res.Error),
			zap.Float64("elapsed_ms", res.ElapsedMS),
		)
		return res
	}

	res.StatusCode = &status
	res.Reachable = status < http.StatusBadRequest
	res.ContentMatched = true
	if ep.ExpectedText != "" && !strings.Contains(body, ep.ExpectedText) {
		res.ContentMatched = false
		h.Logger.Warn(
			fmt.Sprintf("[%s] %s – expected text not found: %q", TagContentMissing, ep.Name, ep.ExpectedText),
			zap.String("tag", TagContentMissing),
			zap.String("name", ep.Name),
			zap.String("url", ep.URL),
			zap.String("expected_text", ep.ExpectedText),
		)
	}
	res.Healthy = res.Reachable && res.ContentMatched

	tag := TagUp
	if !res.Healthy {
		tag = TagIssue
	}
	h.Logger.Info(
		fmt.Sprintf("[%s] %s – %s | status=%d | %.1fms", tag, ep.Name, ep.URL, status, res.ElapsedMS),
		zap.String("tag", tag),
		zap.String("name", ep.Name),
		zap.String("url", ep.URL),
		zap.Int("status", status),
		zap.Float64("elapsed_ms", res.ElapsedMS),
	)

	if !res.Reachable {
		h.Logger.Error(
			fmt.Sprintf("[%s] %s – returned status %d", TagDown, ep.Name, status),
			zap.String("tag", TagDown),
			zap.String("name", ep.Name),
			zap.String("url", ep.URL),
			zap.Int("status", status),
		)
	}
	return res
}

func (h *HTTPChecker) fetch(ctx context.Context, target string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", 0, err
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", 0, fmt.Errorf("read body: %w", err)
	}
	return decodeBody(b, resp.Header.Get("Content-Type")), resp.StatusCode, nil
}

// decodeBody converts b to UTF-8 when the response declares another charset
// (Content-Type parameter or BOM). Undeclared bodies are kept as is.
func decodeBody(b []byte, contentType string) string {
	enc, name, certain := charset.DetermineEncoding(b, contentType)
	if !certain || name == "utf-8" {
		return string(b)
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
