// Package usecases contains application business rules.
// session.go owns the query state machine: edits, persona choice, the single
// in-flight submission and its one completion.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
	"github.com/0xcro3dile/voices-of-independence/internal/domain/ports"
)

const sessionModule = "session"

// Submit refusals. Neither changes the session state.
var (
	ErrBlankQuery = errors.New("query is blank")
	ErrInFlight   = errors.New("a question is already in flight")
)

// SessionOptions tune a QuerySession. Zero values take defaults.
type SessionOptions struct {
	Limit          int
	DefaultPersona entities.Persona
	Logger         ports.Logger
	Metrics        ports.Metrics
}

// QuerySession is the single source of truth for one user's conversation.
// State only changes through its methods, each applied atomically.
type QuerySession struct {
	mu         sync.Mutex
	state      entities.QueryState
	resolved   []entities.ResolvedSource
	indicators []entities.Indicator
	generation uint64
	closed     bool

	gateway  ports.AnswerGateway
	resolver *SourceResolver
	logger   ports.Logger
	metrics  ports.Metrics
	limit    int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewQuerySession creates an idle session with injected dependencies.
func NewQuerySession(gateway ports.AnswerGateway, resolver *SourceResolver, opts SessionOptions) *QuerySession {
	if opts.Limit <= 0 {
		opts.Limit = entities.DefaultLimit
	}
	if !opts.DefaultPersona.Valid() {
		opts.DefaultPersona = entities.DefaultPersona
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &QuerySession{
		state: entities.QueryState{
			SessionID: uuid.NewString(),
			Persona:   opts.DefaultPersona,
			Status:    entities.StatusIdle,
		},
		gateway:  gateway,
		resolver: resolver,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		limit:    opts.Limit,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetQueryText replaces the query text. Allowed in any status.
func (s *QuerySession) SetQueryText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.QueryText = text
}

// SelectPersona replaces the active persona. Allowed in any status; the
// current answer stays until the next submission.
func (s *QuerySession) SelectPersona(p entities.Persona) error {
	if !p.Valid() {
		return fmt.Errorf("unknown persona %q", p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Persona = p
	return nil
}

// UseExample loads the n-th example question (1-based) into the query text.
func (s *QuerySession) UseExample(n int) error {
	if n < 1 || n > len(entities.ExampleQuestions) {
		return fmt.Errorf("example %d out of range 1..%d", n, len(entities.ExampleQuestions))
	}
	s.SetQueryText(entities.ExampleQuestions[n-1])
	return nil
}

// Submit sends the current query to the gateway.
//
// A blank query returns ErrBlankQuery and a submission while another is
// outstanding returns ErrInFlight; neither touches the state or the network.
// Otherwise the previous answer is cleared, the session enters
// StatusSubmitting and the returned channel yields the resulting view once
// the gateway completes.
func (s *QuerySession) Submit() (<-chan entities.View, error) {
	s.mu.Lock()
	if s.state.Status == entities.StatusSubmitting {
		s.mu.Unlock()
		s.metrics.ObserveRejection(entities.ErrorKindInFlightConflict)
		s.logger.Debug(sessionModule, "submission ignored, one already in flight", nil)
		return nil, ErrInFlight
	}
	if strings.TrimSpace(s.state.QueryText) == "" {
		s.mu.Unlock()
		s.metrics.ObserveRejection(entities.ErrorKindBlankQuery)
		return nil, ErrBlankQuery
	}
	if s.closed {
		s.mu.Unlock()
		return nil, errors.New("session closed")
	}

	s.clearAnswer()
	s.state.Status = entities.StatusSubmitting
	s.generation++
	gen := s.generation
	q := entities.Question{
		Text:    s.state.QueryText,
		Persona: s.state.Persona,
		Limit:   s.limit,
	}
	sessionID := s.state.SessionID
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info(sessionModule, "question submitted", map[string]interface{}{
		"session_id": sessionID,
		"mode":       string(q.Persona),
		"limit":      q.Limit,
	})

	done := make(chan entities.View, 1)
	go func() {
		defer s.wg.Done()
		defer close(done)

		start := time.Now()
		answer, err := s.gateway.Ask(s.ctx, q)
		s.metrics.ObserveSubmission(q.Persona, entities.KindOf(err), time.Since(start))

		done <- s.complete(gen, answer, err)
	}()
	return done, nil
}

// complete applies the gateway outcome unless the submission went stale.
func (s *QuerySession) complete(gen uint64, answer *entities.Answer, err error) entities.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.generation {
		s.logger.Warn(sessionModule, "discarding stale response", map[string]interface{}{
			"session_id": s.state.SessionID,
			"generation": gen,
		})
		return s.viewLocked()
	}

	if err == nil && answer == nil {
		err = &entities.GatewayError{Kind: entities.ErrorKindMalformedResponse, Err: errors.New("empty answer")}
	}
	if err != nil {
		s.onGatewayFailure(entities.KindOf(err), err)
	} else {
		s.onGatewaySuccess(answer)
	}
	return s.viewLocked()
}

func (s *QuerySession) onGatewaySuccess(answer *entities.Answer) {
	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	s.state.Status = entities.StatusSucceeded
	s.state.Answer = answer.Text
	s.state.Sources = append([]string(nil), sources...)
	s.state.Evaluation = answer.Evaluation
	s.state.FailureKind = entities.ErrorKindNone

	s.resolved = s.resolver.Resolve(s.state.Sources)
	s.indicators = DeriveIndicators(answer.Evaluation)

	s.logger.Info(sessionModule, "answer received", map[string]interface{}{
		"session_id": s.state.SessionID,
		"sources":    len(s.state.Sources),
		"matched":    countMatched(s.resolved),
	})
}

func (s *QuerySession) onGatewayFailure(kind entities.ErrorKind, err error) {
	s.state.Status = entities.StatusFailed
	s.state.Answer = entities.FallbackAnswer
	s.state.Sources = []string{}
	s.state.Evaluation = nil
	s.state.FailureKind = kind
	s.resolved = []entities.ResolvedSource{}
	s.indicators = nil

	s.logger.Error(sessionModule, "question failed", map[string]interface{}{
		"session_id": s.state.SessionID,
		"kind":       string(kind),
		"error":      err.Error(),
	})
}

func (s *QuerySession) clearAnswer() {
	s.state.Answer = ""
	s.state.Sources = nil
	s.state.Evaluation = nil
	s.state.FailureKind = entities.ErrorKindNone
	s.resolved = nil
	s.indicators = nil
}

// State returns a copy of the current state.
func (s *QuerySession) State() entities.QueryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyState()
}

// View returns the state plus resolved sources and evaluation indicators.
func (s *QuerySession) View() entities.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *QuerySession) viewLocked() entities.View {
	v := entities.View{
		State:        s.copyState(),
		PersonaLabel: s.state.Persona.Label(),
	}
	if s.resolved != nil {
		v.Resolved = append([]entities.ResolvedSource{}, s.resolved...)
	}
	if s.indicators != nil {
		v.Evaluation = append([]entities.Indicator{}, s.indicators...)
	}
	return v
}

func (s *QuerySession) copyState() entities.QueryState {
	st := s.state
	if s.state.Sources != nil {
		st.Sources = append([]string{}, s.state.Sources...)
	}
	return st
}

// Close ends the session. An outstanding response is discarded when it
// arrives, and Close waits for it.
func (s *QuerySession) Close() {
	s.mu.Lock()
	s.closed = true
	s.generation++
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func countMatched(resolved []entities.ResolvedSource) int {
	n := 0
	for _, r := range resolved {
		if r.Matched() {
			n++
		}
	}
	return n
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type nopMetrics struct{}

func (nopMetrics) ObserveSubmission(entities.Persona, entities.ErrorKind, time.Duration) {}
func (nopMetrics) ObserveRejection(entities.ErrorKind)                                   {}
