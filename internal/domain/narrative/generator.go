package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/mercwork/internal/domain/model"
	"github.com/okian/mercwork/pkg/logger"
)

// Request carries what a generator needs to write an outcome narrative.
type Request struct {
	JobID        string        `json:"job_id"`
	Title        string        `json:"title"`
	Summary      string        `json:"summary"`
	Participants []string      `json:"participants"`
	Outcome      model.Outcome `json:"outcome"`
}

// Generator produces narrative text for a resolved job.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// DefaultTimeout bounds one generator call.
const DefaultTimeout = 5 * time.Second

// maxResponseBytes caps how much of a generator response is read.
const maxResponseBytes = 64 << 10

// HTTPGenerator posts a Request as JSON and expects {"text": "..."} back.
type HTTPGenerator struct {
	url     string
	client  *http.Client
	timeout time.Duration
	log     logger.Logger
}

// NewHTTPGenerator returns a generator that calls url.
func NewHTTPGenerator(url string, opts ...Option) *HTTPGenerator {
	g := &HTTPGenerator{
		url:     url,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.client == nil {
		g.client = &http.Client{Timeout: g.timeout}
	}
	if g.log == nil {
		g.log = logger.Nop()
	}
	return g
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate implements Generator.
func (g *HTTPGenerator) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal narrative request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create narrative request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneratorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrGeneratorUnavailable, resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read narrative response: %w", err)
	}
	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", ErrEmptyNarrative
	}
	g.log.Debug(ctx, "narrative generated", logger.JobID(req.JobID), logger.Int("bytes", len(out.Text)))
	return out.Text, nil
}

// Template is the deterministic sentence used when no generator answers.
func Template(req Request) string {
	p := message.NewPrinter(language.English)
	crew := "an unnamed crew"
	if len(req.Participants) > 0 {
		crew = strings.Join(req.Participants, ", ")
	}
	verdict := "failed"
	if req.Outcome == model.OutcomeSuccess {
		verdict = "completed"
	}
	if req.Summary == "" {
		return p.Sprintf("Contract %q was %s by %s.", req.Title, verdict, crew)
	}
	return p.Sprintf("Contract %q was %s by %s. %s", req.Title, verdict, crew, req.Summary)
}

// Obtain asks gen for text and falls back to Template on any failure. A nil
// gen always falls back.
func Obtain(ctx context.Context, gen Generator, req Request, log logger.Logger) (text string, fallback bool) {
	if gen == nil {
		return Template(req), true
	}
	text, err := gen.Generate(ctx, req)
	if err != nil {
		if log != nil {
			log.Warn(ctx, "narrative generator failed, using template", logger.JobID(req.JobID), logger.Error(err))
		}
		return Template(req), true
	}
	return text, false
}
