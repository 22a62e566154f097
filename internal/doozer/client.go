// Package doozer implements the HTTP client for the Doozer agent hub's
// Tool/execute API.
//
// The wire contract is quirky and must be preserved: the request embeds a
// "~"-separated parameter string inside a structured body naming the
// ability to run, and the response envelope's "output" field is itself a
// JSON-encoded string. An inner parse failure is not an error - the raw
// string is used verbatim as the answer.
package doozer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/maddielabs/maddie/internal/conversation"
	"github.com/maddielabs/maddie/internal/log"
)

// abilityName is the agent hub ability invoked for every chat question.
const abilityName = "Box - Ask Agent Hub Question"

// noResponseFallback is the answer used when the envelope carries no output.
const noResponseFallback = "No response received"

// ErrAgent is the uniform error for any agent request failure. Callers
// never see provider-specific error shapes; inspect with errors.As for
// *TransportError when the HTTP status matters.
var ErrAgent = errors.New("agent request failed")

// TransportError reports a non-success HTTP status from the agent API.
type TransportError struct {
	Status int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, http.StatusText(e.Status))
}

// Config holds the client's connection settings.
type Config struct {
	BaseURL         string
	SubscriptionKey string
	APIKey          string
	DoozerName      string
	HubID           string // default hub when the request carries none
	AgentID         string // default agent when the request carries none
}

// Request is one chat question plus the reconstructed history.
type Request struct {
	Query               string
	SessionID           string
	Timestamp           string // ISO-8601
	ConversationHistory []conversation.HistoryItem
	HubID               string // optional override
	AgentID             string // optional override
}

// Response is the parsed agent answer.
type Response struct {
	ID                string
	Message           string
	Sources           []conversation.Citation
	FollowUpQuestions []string
}

// executePayload is the Tool/execute request body.
type executePayload struct {
	DoozerName string            `json:"doozer_name"`
	Variables  []executeVariable `json:"variables"`
}

type executeVariable struct {
	AbilityName  string `json:"ability_name"`
	ReturnResult bool   `json:"return_result"`
	Params       string `json:"params"`
}

// envelope is the outer response body. Output is double-encoded JSON.
type envelope struct {
	Output string `json:"output"`
}

// agentOutput is the inner document carried in envelope.Output.
type agentOutput struct {
	Answer            string                  `json:"answer"`
	Citations         []conversation.Citation `json:"citations"`
	FollowUpQuestions []string                `json:"followUpQuestions"`
}

// Client is the Doozer agent hub API client. One outbound call per Send;
// no retries at this layer.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     log.Logger
	limiter    *rate.Limiter // optional proactive throttle, nil = unlimited
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Useful for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimiter sets a proactive outbound throttle. This is independent
// of the widget's persisted quota: it smooths bursts toward the provider
// rather than enforcing the user-facing limit.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// New creates a Client.
func New(cfg Config, logger log.Logger, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("doozer.New: base URL is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	c := &Client{
		cfg:        cfg,
		httpClient: http.DefaultClient,
		logger:     logger.With("component", "doozer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Send issues one Tool/execute call and parses the structured response.
// Every failure mode is folded into ErrAgent; a malformed inner document
// is NOT a failure and degrades to the raw output string.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAgent, err)
		}
	}

	body, err := json.Marshal(c.buildPayload(req))
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %w", ErrAgent, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/Tool/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrAgent, err)
	}
	httpReq.Header.Set("ocp-apim-subscription-key", c.cfg.SubscriptionKey)
	httpReq.Header.Set("api_key", c.cfg.APIKey)
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("accept", "*/*")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("agent request failed", "operation", "Send", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrAgent, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("agent returned non-success status",
			"operation", "Send", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %w", ErrAgent, &TransportError{Status: resp.StatusCode})
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrAgent, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %w", ErrAgent, err)
	}

	return c.parseOutput(env), nil
}

// buildPayload assembles the Tool/execute body around the "~"-separated
// params string the hub expects.
func (c *Client) buildPayload(req Request) executePayload {
	hubID := req.HubID
	if hubID == "" {
		hubID = c.cfg.HubID
	}
	agentID := req.AgentID
	if agentID == "" {
		agentID = c.cfg.AgentID
	}

	history := req.ConversationHistory
	if history == nil {
		history = []conversation.HistoryItem{}
	}
	// History items contain only sanitized strings; a marshal failure is
	// not reachable here.
	historyJSON, _ := json.Marshal(history)

	params := fmt.Sprintf("question=%s~hub_id=%s~agent_id=%s~conversation_history=%s",
		req.Query, hubID, agentID, historyJSON)

	return executePayload{
		DoozerName: c.cfg.DoozerName,
		Variables: []executeVariable{{
			AbilityName:  abilityName,
			ReturnResult: true,
			Params:       params,
		}},
	}
}

// parseOutput unwraps the double-encoded output field. Inner parse
// failures degrade to the raw string rather than erroring.
func (c *Client) parseOutput(env envelope) *Response {
	result := &Response{
		ID:                "doozer_" + uuid.NewString(),
		Message:           noResponseFallback,
		Sources:           nil,
		FollowUpQuestions: []string{},
	}

	if env.Output == "" {
		return result
	}

	var out agentOutput
	if err := json.Unmarshal([]byte(env.Output), &out); err != nil {
		// Provider sent plain text instead of a JSON document.
		c.logger.Debug("agent output is not JSON, using raw text", "error", err)
		result.Message = env.Output
		return result
	}

	if out.Answer != "" {
		result.Message = out.Answer
	}
	result.Sources = out.Citations
	if out.FollowUpQuestions != nil {
		result.FollowUpQuestions = out.FollowUpQuestions
	}
	return result
}
