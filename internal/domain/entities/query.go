package entities

import (
	"errors"
	"fmt"
)

// Status is where a session is in its submit cycle.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// FallbackAnswer is shown for every remote failure. The distinguishing
// ErrorKind is logged, never displayed.
const FallbackAnswer = "Error connecting to the server. Please try again later."

// DefaultLimit is the result-count limit sent with each question.
const DefaultLimit = 5

// QueryState is the mutable conversational state owned by one session.
// Answer and Sources are only meaningful in StatusSucceeded and StatusFailed;
// a nil Sources slice means absent.
type QueryState struct {
	SessionID   string    `json:"session_id"`
	QueryText   string    `json:"query"`
	Persona     Persona   `json:"mode"`
	Status      Status    `json:"status"`
	Answer      string    `json:"response,omitempty"`
	Sources     []string  `json:"sources"`
	Evaluation  *Scores   `json:"evaluation,omitempty"`
	FailureKind ErrorKind `json:"-"`
}

// Question is the snapshot handed to the gateway at submit time.
type Question struct {
	Text    string
	Persona Persona
	Limit   int
}

// Answer is a well-formed backend reply.
type Answer struct {
	Text       string
	Sources    []string
	Evaluation *Scores
}

// Scores are the optional quality values a backend may attach to an answer.
// A nil field was not provided.
type Scores struct {
	Relevance          *float64 `json:"relevance,omitempty"`
	HistoricalAccuracy *float64 `json:"historicalAccuracy,omitempty"`
	SourceQuality      *float64 `json:"sourceQuality,omitempty"`
}

// Indicator is one rendered evaluation bar.
type Indicator struct {
	Label    string  `json:"label"`
	Value    float64 `json:"value"` // Always within [0,1]
	Provided bool    `json:"provided"`
}

// View is what presentation layers read: the state plus everything derived
// from it for the current answer.
type View struct {
	State        QueryState       `json:"state"`
	PersonaLabel string           `json:"mode_label"`
	Resolved     []ResolvedSource `json:"resolved_sources"`
	Evaluation   []Indicator      `json:"evaluation"`
}

// ErrorKind names why a submission did not produce an answer.
type ErrorKind string

const (
	ErrorKindNone              ErrorKind = ""
	ErrorKindBlankQuery        ErrorKind = "blank_query"
	ErrorKindInFlightConflict  ErrorKind = "in_flight_conflict"
	ErrorKindTransportFailure  ErrorKind = "transport_failure"
	ErrorKindServerFailure     ErrorKind = "server_failure"
	ErrorKindMalformedResponse ErrorKind = "malformed_response"
)

// GatewayError is returned by an AnswerGateway for any failed exchange.
type GatewayError struct {
	Kind ErrorKind
	Err  error
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrorKind from err. Errors that are not a GatewayError
// count as transport failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return ErrorKindTransportFailure
}
