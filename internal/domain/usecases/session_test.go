package usecases

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
	"github.com/0xcro3dile/voices-of-independence/internal/domain/ports"
)

// fakeGateway implements ports.AnswerGateway for testing.
// When release is set, Ask blocks until it is closed or ctx ends.
type fakeGateway struct {
	mu      sync.Mutex
	calls   []entities.Question
	answer  *entities.Answer
	err     error
	release chan struct{}
}

func (g *fakeGateway) Ask(ctx context.Context, q entities.Question) (*entities.Answer, error) {
	g.mu.Lock()
	g.calls = append(g.calls, q)
	release := g.release
	answer, err := g.answer, g.err
	g.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, &entities.GatewayError{Kind: entities.ErrorKindTransportFailure, Err: ctx.Err()}
		}
	}
	return answer, err
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// staticCatalog implements ports.Catalog for testing.
type staticCatalog []entities.Document

func (c staticCatalog) Documents() []entities.Document {
	return append([]entities.Document(nil), c...)
}

func (c staticCatalog) Search(ctx context.Context, query string, limit int) ([]ports.SearchHit, error) {
	return nil, nil
}

var testCatalog = staticCatalog{
	{Title: "Declaration of Independence", Date: "July 4, 1776", Authors: []string{"Thomas Jefferson", "Continental Congress"}, Category: entities.CategoryFoundingDocument},
	{Title: "Common Sense", Date: "January 10, 1776", Authors: []string{"Thomas Paine"}, Category: entities.CategoryPamphlet},
	{Title: "Letter from Abigail Adams to John Adams", Date: "March 31, 1776", Authors: []string{"Abigail Adams"}, Category: entities.CategoryLetter},
}

func newTestSession(gw *fakeGateway) *QuerySession {
	return NewQuerySession(gw, NewSourceResolver(testCatalog), SessionOptions{})
}

func TestQuerySession_Defaults(t *testing.T) {
	s := newTestSession(&fakeGateway{})
	defer s.Close()

	st := s.State()
	assert.Equal(t, entities.StatusIdle, st.Status)
	assert.Equal(t, entities.PersonaHistorian, st.Persona)
	assert.NotEmpty(t, st.SessionID)
	assert.Nil(t, st.Sources)
}

func TestQuerySession_BlankQueryNeverSubmits(t *testing.T) {
	gw := &fakeGateway{answer: &entities.Answer{Text: "unused"}}
	s := newTestSession(gw)
	defer s.Close()

	for _, q := range []string{"", " ", "\t\n  "} {
		s.SetQueryText(q)
		done, err := s.Submit()

		assert.ErrorIs(t, err, ErrBlankQuery)
		assert.Nil(t, done)
		assert.Equal(t, entities.StatusIdle, s.State().Status)
	}
	assert.Equal(t, 0, gw.callCount())
}

func TestQuerySession_SingleFlight(t *testing.T) {
	gw := &fakeGateway{
		answer:  &entities.Answer{Text: "answer", Sources: []string{}},
		release: make(chan struct{}),
	}
	s := newTestSession(gw)
	defer s.Close()

	s.SetQueryText("What did the founders believe about taxation?")
	done, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, entities.StatusSubmitting, s.State().Status)

	for i := 0; i < 5; i++ {
		_, err := s.Submit()
		assert.ErrorIs(t, err, ErrInFlight)
	}

	close(gw.release)
	view := <-done

	assert.Equal(t, entities.StatusSucceeded, view.State.Status)
	assert.Equal(t, 1, gw.callCount())
}

func TestQuerySession_OutboundSnapshot(t *testing.T) {
	gw := &fakeGateway{answer: &entities.Answer{Text: "answer"}}
	s := newTestSession(gw)
	defer s.Close()

	s.SetQueryText("What were the key arguments for independence in 1776?")
	done, err := s.Submit()
	require.NoError(t, err)
	<-done

	require.Len(t, gw.calls, 1)
	assert.Equal(t, entities.Question{
		Text:    "What were the key arguments for independence in 1776?",
		Persona: entities.PersonaHistorian,
		Limit:   5,
	}, gw.calls[0])
}

func TestQuerySession_SuccessResolvesSources(t *testing.T) {
	gw := &fakeGateway{answer: &entities.Answer{
		Text:    "Jefferson drafted it.",
		Sources: []string{"Declaration of Independence", "Nonexistent Document"},
	}}
	s := newTestSession(gw)
	defer s.Close()

	s.SetQueryText("Who wrote the Declaration?")
	done, err := s.Submit()
	require.NoError(t, err)
	view := <-done

	assert.Equal(t, "Jefferson drafted it.", view.State.Answer)
	require.Len(t, view.Resolved, 2)
	assert.True(t, view.Resolved[0].Matched())
	assert.Equal(t, "Declaration of Independence", view.Resolved[0].Document.Title)
	assert.False(t, view.Resolved[1].Matched())
	assert.Equal(t, "Expert Historian", view.PersonaLabel)
}

func TestQuerySession_EmptySources(t *testing.T) {
	gw := &fakeGateway{answer: &entities.Answer{Text: "No documents needed."}}
	s := newTestSession(gw)
	defer s.Close()

	s.SetQueryText("Hello?")
	done, err := s.Submit()
	require.NoError(t, err)
	view := <-done

	assert.NotNil(t, view.State.Sources)
	assert.Empty(t, view.State.Sources)
	assert.Empty(t, view.Resolved)
}

func TestQuerySession_TransportFailure(t *testing.T) {
	gw := &fakeGateway{err: &entities.GatewayError{
		Kind: entities.ErrorKindTransportFailure,
		Err:  errors.New("connection refused"),
	}}
	s := newTestSession(gw)
	defer s.Close()

	s.SetQueryText("What grievances did colonists have against King George?")
	done, err := s.Submit()
	require.NoError(t, err)
	view := <-done

	assert.Equal(t, entities.StatusFailed, view.State.Status)
	assert.Equal(t, entities.FallbackAnswer, view.State.Answer)
	assert.NotNil(t, view.State.Sources)
	assert.Empty(t, view.State.Sources)
	assert.Equal(t, entities.ErrorKindTransportFailure, view.State.FailureKind)
	assert.Nil(t, view.Evaluation)
}

func TestQuerySession_FailureDiscardsPriorAnswer(t *testing.T) {
	gw := &fakeGateway{answer: &entities.Answer{Text: "first", Sources: []string{"Common Sense"}}}
	s := newTestSession(gw)
	defer s.Close()

	s.SetQueryText("first question")
	done, _ := s.Submit()
	<-done

	gw.mu.Lock()
	gw.answer, gw.err = nil, &entities.GatewayError{Kind: entities.ErrorKindServerFailure}
	gw.mu.Unlock()

	done, err := s.Submit()
	require.NoError(t, err)
	view := <-done

	assert.Equal(t, entities.FallbackAnswer, view.State.Answer)
	assert.Empty(t, view.State.Sources)
	assert.Empty(t, view.Resolved)
}

func TestQuerySession_PersonaChangeKeepsAnswer(t *testing.T) {
	gw := &fakeGateway{answer: &entities.Answer{Text: "historian answer", Sources: []string{"Common Sense"}}}
	s := newTestSession(gw)
	defer s.Close()

	s.SetQueryText("Why did Paine write?")
	done, _ := s.Submit()
	<-done

	require.NoError(t, s.SelectPersona(entities.PersonaFoundingFather))
	view := s.View()

	assert.Equal(t, entities.PersonaFoundingFather, view.State.Persona)
	assert.Equal(t, "historian answer", view.State.Answer)
	assert.Equal(t, []string{"Common Sense"}, view.State.Sources)
	assert.Len(t, view.Resolved, 1)
}

func TestQuerySession_SubmitClearsPreviousAnswer(t *testing.T) {
	gw := &fakeGateway{answer: &entities.Answer{Text: "first", Sources: []string{"Common Sense"}}}
	s := newTestSession(gw)
	defer s.Close()

	s.SetQueryText("question")
	done, _ := s.Submit()
	<-done

	gw.mu.Lock()
	gw.release = make(chan struct{})
	gw.mu.Unlock()

	done, err := s.Submit()
	require.NoError(t, err)

	view := s.View()
	assert.Equal(t, entities.StatusSubmitting, view.State.Status)
	assert.Empty(t, view.State.Answer)
	assert.Nil(t, view.State.Sources)
	assert.Nil(t, view.Resolved)
	assert.Nil(t, view.Evaluation)

	close(gw.release)
	<-done
}

func TestQuerySession_EditsDuringFlightApplyToNextSubmit(t *testing.T) {
	gw := &fakeGateway{answer: &entities.Answer{Text: "ok"}, release: make(chan struct{})}
	s := newTestSession(gw)
	defer s.Close()

	s.SetQueryText("first")
	done, err := s.Submit()
	require.NoError(t, err)

	s.SetQueryText("second")
	require.NoError(t, s.SelectPersona(entities.PersonaTimeTraveler))
	close(gw.release)
	<-done

	done, err = s.Submit()
	require.NoError(t, err)
	<-done

	require.Len(t, gw.calls, 2)
	assert.Equal(t, "first", gw.calls[0].Text)
	assert.Equal(t, entities.PersonaHistorian, gw.calls[0].Persona)
	assert.Equal(t, "second", gw.calls[1].Text)
	assert.Equal(t, entities.PersonaTimeTraveler, gw.calls[1].Persona)
}

func TestQuerySession_EvaluationPassthrough(t *testing.T) {
	relevance, accuracy := 0.8, 1.7
	gw := &fakeGateway{answer: &entities.Answer{
		Text:       "scored",
		Evaluation: &entities.Scores{Relevance: &relevance, HistoricalAccuracy: &accuracy},
	}}
	s := newTestSession(gw)
	defer s.Close()

	s.SetQueryText("score me")
	done, _ := s.Submit()
	view := <-done

	require.Len(t, view.Evaluation, 3)
	assert.Equal(t, entities.Indicator{Label: LabelRelevance, Value: 0.8, Provided: true}, view.Evaluation[0])
	assert.Equal(t, entities.Indicator{Label: LabelHistoricalAccuracy, Value: 0, Provided: false}, view.Evaluation[1])
	assert.False(t, view.Evaluation[2].Provided)
}

func TestQuerySession_CloseDiscardsLateResponse(t *testing.T) {
	gw := &fakeGateway{answer: &entities.Answer{Text: "late"}, release: make(chan struct{})}
	s := newTestSession(gw)

	s.SetQueryText("slow question")
	done, err := s.Submit()
	require.NoError(t, err)

	s.Close()
	view := <-done

	assert.Equal(t, entities.StatusSubmitting, view.State.Status)
	assert.Empty(t, view.State.Answer)
}

func TestQuerySession_SelectPersonaRejectsUnknown(t *testing.T) {
	s := newTestSession(&fakeGateway{})
	defer s.Close()

	assert.Error(t, s.SelectPersona("pirate"))
	assert.Equal(t, entities.PersonaHistorian, s.State().Persona)
}

func TestQuerySession_UseExample(t *testing.T) {
	s := newTestSession(&fakeGateway{})
	defer s.Close()

	require.NoError(t, s.UseExample(1))
	assert.Equal(t, "What were the key arguments for independence in 1776?", s.State().QueryText)
	assert.Error(t, s.UseExample(0))
	assert.Error(t, s.UseExample(4))
}

func TestQuerySession_OptionsOverrideDefaults(t *testing.T) {
	gw := &fakeGateway{answer: &entities.Answer{Text: "ok"}}
	s := NewQuerySession(gw, NewSourceResolver(testCatalog), SessionOptions{
		Limit:          3,
		DefaultPersona: entities.PersonaTimeTraveler,
	})
	defer s.Close()

	s.SetQueryText("q")
	done, _ := s.Submit()
	<-done

	assert.Equal(t, 3, gw.calls[0].Limit)
	assert.Equal(t, entities.PersonaTimeTraveler, gw.calls[0].Persona)
}
