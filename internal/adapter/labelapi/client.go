package labelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"sync"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/laveleven/labelai-backend/internal/config"
	"github.com/laveleven/labelai-backend/internal/domain"
)

// Client calls the remote label-processing service. Every call goes
// through the shared resilience guard; failures that exhaust the policy
// surface as domain.ErrDependencyUnavailable, client errors (remote 4xx)
// as domain.ErrValidation.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	guard         *guard
	batchParallel int
	log           *slog.Logger
}

// NewClient creates a Client for the configured remote service.
func NewClient(cfg config.LabelAPIConfig, logger *slog.Logger) *Client {
	log := logger.With("adapter", "labelapi")
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		// Per-call deadlines come from the request context.
		httpClient:    &http.Client{Timeout: cfg.CallTimeout},
		guard:         newGuard(cfg, log),
		batchParallel: cfg.BatchParallel,
		log:           log,
	}
}

// ExtractText runs OCR on the uploaded image.
func (c *Client) ExtractText(ctx context.Context, upload Upload) (*OCRResult, error) {
	body, contentType, err := encodeMultipart(upload, nil)
	if err != nil {
		return nil, fmt.Errorf("labelapi: encode upload: %w", err)
	}

	respBody, err := c.call(ctx, "ocr", func(ctx context.Context) ([]byte, error) {
		return c.doRequest(ctx, "/ocr", contentType, body)
	})
	if err != nil {
		return nil, err
	}

	var result OCRResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("labelapi: decode ocr response: %w", err)
	}
	return &result, nil
}

// StructureTexts converts raw OCR texts into the structured label document.
func (c *Client) StructureTexts(ctx context.Context, req StructureRequest) (json.RawMessage, error) {
	respBody, err := c.postJSON(ctx, "structure", "/structure", req)
	if err != nil {
		return nil, err
	}
	if !json.Valid(respBody) {
		return nil, fmt.Errorf("labelapi: structure response is not valid json")
	}
	return json.RawMessage(respBody), nil
}

// Translate converts a structured document into the target country's format.
func (c *Client) Translate(ctx context.Context, req TranslateRequest) (*TranslateResult, error) {
	respBody, err := c.postJSON(ctx, "translate", "/translate", req)
	if err != nil {
		return nil, err
	}

	var result TranslateResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("labelapi: decode translate response: %w", err)
	}
	return &result, nil
}

// TranslateMultiple translates one document into several target countries
// concurrently. Any single failure fails the whole call.
func (c *Client) TranslateMultiple(ctx context.Context, language string, data json.RawMessage, countries []string) (map[string]*TranslateResult, error) {
	results := make(map[string]*TranslateResult, len(countries))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.batchParallel)

	for _, country := range countries {
		g.Go(func() error {
			result, err := c.Translate(ctx, TranslateRequest{
				Language:      language,
				Data:          data,
				TargetCountry: country,
			})
			if err != nil {
				return fmt.Errorf("translate to %s: %w", country, err)
			}
			mu.Lock()
			results[country] = result
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GenerateHTML renders the translated document as a label HTML page and
// returns the raw markup.
func (c *Client) GenerateHTML(ctx context.Context, req HTMLRequest) (string, error) {
	respBody, err := c.postJSON(ctx, "generate-html", "/generate-html", req)
	if err != nil {
		return "", err
	}
	return string(respBody), nil
}

// ProcessFull runs the composite pipeline (OCR, structure, translate and
// optionally HTML) in a single remote call.
func (c *Client) ProcessFull(ctx context.Context, upload Upload, targetCountry string, generateHTML bool) (*PipelineResult, error) {
	extra := map[string]string{"generate_html": strconv.FormatBool(generateHTML)}
	if targetCountry != "" {
		extra["target_country"] = targetCountry
	}

	body, contentType, err := encodeMultipart(upload, extra)
	if err != nil {
		return nil, fmt.Errorf("labelapi: encode upload: %w", err)
	}

	respBody, err := c.call(ctx, "process", func(ctx context.Context) ([]byte, error) {
		return c.doRequest(ctx, "/process", contentType, body)
	})
	if err != nil {
		return nil, err
	}

	var result PipelineResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("labelapi: decode pipeline response: %w", err)
	}
	return &result, nil
}

// ProcessBatch runs the composite pipeline for every item with bounded
// parallelism. A failed item is recorded and logged, and the batch
// continues; results keep the item association of the input.
func (c *Client) ProcessBatch(ctx context.Context, items []BatchItem, targetCountry string, generateHTML bool) []BatchResult {
	results := make([]BatchResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.batchParallel)

	for i, item := range items {
		g.Go(func() error {
			result, err := c.ProcessFull(gctx, item.Upload, targetCountry, generateHTML)
			if err != nil {
				c.log.ErrorContext(gctx, "batch item failed",
					slog.String("item_id", item.ItemID),
					slog.String("error", err.Error()),
				)
			}
			results[i] = BatchResult{ItemID: item.ItemID, Result: result, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// Healthy reports whether the circuit breaker currently admits calls.
func (c *Client) Healthy() bool {
	return c.guard.State() != gobreaker.StateOpen
}

// BreakerState exposes the breaker state for health endpoints.
func (c *Client) BreakerState() string {
	return c.guard.State().String()
}

// postJSON marshals payload and posts it through the resilience guard.
func (c *Client) postJSON(ctx context.Context, name, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("labelapi: encode %s request: %w", name, err)
	}
	return c.call(ctx, name, func(ctx context.Context) ([]byte, error) {
		return c.doRequest(ctx, path, "application/json", body)
	})
}

// call runs op under the guard and applies the fallback: anything other
// than a client error is logged and converted to ErrDependencyUnavailable.
func (c *Client) call(ctx context.Context, name string, op func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	body, err := c.guard.Do(ctx, op)
	if err == nil {
		return body, nil
	}
	if errors.Is(err, domain.ErrValidation) {
		return nil, err
	}

	c.log.ErrorContext(ctx, "remote call exhausted, serving fallback",
		slog.String("operation", name),
		slog.String("error", err.Error()),
	)
	return nil, fmt.Errorf("labelapi: %s: %w", name, domain.ErrDependencyUnavailable)
}

// doRequest performs one HTTP attempt. A 4xx response maps to a
// validation error, anything else non-2xx to a retryable error.
func (c *Client) doRequest(ctx context.Context, path, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return respBody, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("%s rejected request (status %d): %w", path, resp.StatusCode, domain.ErrValidation)
	default:
		return nil, fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
}

// encodeMultipart builds a multipart body with the upload as the "file"
// part, keeping the original filename and content-type, plus any extra
// text fields.
func encodeMultipart(upload Upload, fields map[string]string) (body []byte, contentType string, err error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, upload.Filename))
	if upload.ContentType != "" {
		header.Set("Content-Type", upload.ContentType)
	}

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(upload.Content); err != nil {
		return nil, "", err
	}

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
