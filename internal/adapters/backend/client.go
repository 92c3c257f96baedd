// Package backend provides the retrieval backend adapter.
// It implements ports.AnswerGateway over the independence-rag HTTP API.
package backend

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
)

// DefaultEndpoint is used when no endpoint is configured.
const DefaultEndpoint = "http://localhost:8000/api/independence-rag"

const maxBodyBytes = 4 << 20

//go:embed response_schema.json
var responseSchemaJSON string

var (
	compileOnce    sync.Once
	responseSchema *jsonschema.Schema
	compileErr     error
)

// ResponseSchema returns the compiled schema every success body must satisfy.
func ResponseSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("response_schema.json", strings.NewReader(responseSchemaJSON)); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, err := compiler.Compile("response_schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile response schema: %w", err)
			return
		}
		responseSchema = schema
	})
	return responseSchema, compileErr
}

// Client implements ports.AnswerGateway. One Ask is one POST; it never
// retries and never caches.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a backend client.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// askRequest is the outbound request body.
type askRequest struct {
	Query string `json:"query"`
	Mode  string `json:"mode"`
	Limit int    `json:"limit"`
}

// askResponse is the success body, after schema validation.
type askResponse struct {
	Response   string          `json:"response"`
	Sources    []string        `json:"sources"`
	Evaluation json.RawMessage `json:"evaluation,omitempty"`
}

// Ask posts the question and decodes the answer.
func (c *Client) Ask(ctx context.Context, q entities.Question) (*entities.Answer, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = entities.DefaultLimit
	}
	reqBody := askRequest{
		Query: q.Text,
		Mode:  string(q.Persona),
		Limit: limit,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fail(entities.ErrorKindTransportFailure, fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fail(entities.ErrorKindTransportFailure, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fail(entities.ErrorKindTransportFailure, fmt.Errorf("calling backend: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(entities.ErrorKindServerFailure, fmt.Errorf("backend returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fail(entities.ErrorKindTransportFailure, fmt.Errorf("reading response: %w", err))
	}
	return decodeAnswer(body)
}

// decodeAnswer validates a success body and extracts the answer.
func decodeAnswer(body []byte) (*entities.Answer, error) {
	schema, err := ResponseSchema()
	if err != nil {
		return nil, fail(entities.ErrorKindMalformedResponse, err)
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fail(entities.ErrorKindMalformedResponse, fmt.Errorf("response is not valid JSON: %w", err))
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fail(entities.ErrorKindMalformedResponse, fmt.Errorf("response does not match schema: %w", err))
	}

	var decoded askResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fail(entities.ErrorKindMalformedResponse, fmt.Errorf("decoding response: %w", err))
	}

	return &entities.Answer{
		Text:       decoded.Response,
		Sources:    decoded.Sources,
		Evaluation: decodeScores(decoded.Evaluation),
	}, nil
}

// decodeScores reads the optional evaluation object. It is lenient: a
// missing or mistyped field is simply absent.
func decodeScores(raw json.RawMessage) *entities.Scores {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil
	}
	return &entities.Scores{
		Relevance:          number(fields["relevance"]),
		HistoricalAccuracy: number(fields["historicalAccuracy"]),
		SourceQuality:      number(fields["sourceQuality"]),
	}
}

func number(v interface{}) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}

func fail(kind entities.ErrorKind, err error) error {
	return &entities.GatewayError{Kind: kind, Err: err}
}
