package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"promptchart/internal/services"
	"promptchart/internal/tasks"
	"promptchart/pkg/analyze"
	"promptchart/pkg/category"
)

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, req services.AnalyzeRequest) (*services.AnalyzeResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*services.AnalyzeResult)
	return res, args.Error(1)
}

func newTask(t *testing.T, p tasks.AnalysisPayload) *asynq.Task {
	t.Helper()
	body, err := json.Marshal(p)
	require.NoError(t, err)
	return asynq.NewTask(tasks.TypeAnalysisRun, body)
}

func TestHandleAnalysisRun_Success(t *testing.T) {
	id := uuid.New()
	m := &mockAnalyzer{}
	m.On("Analyze", mock.Anything, services.AnalyzeRequest{Prompt: "50% a, 50% b", Variant: "general", AnalysisID: id}).
		Return(&services.AnalyzeResult{AnalysisID: id, Result: &analyze.Result{
			Categories: []category.Category{{Name: "a", Value: 50}, {Name: "b", Value: 50}},
		}}, nil)

	h := HandleAnalysisRun(AnalysisDeps{Analyzer: m})
	err := h(context.Background(), newTask(t, tasks.AnalysisPayload{AnalysisID: id, Prompt: "50% a, 50% b", Variant: "general"}))
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestHandleAnalysisRun_Errors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		skipRetry bool
	}{
		{name: "invalid input", err: &analyze.Error{Kind: analyze.ErrInvalidInput}, skipRetry: true},
		{name: "no data", err: &analyze.Error{Kind: analyze.ErrNoExtractableData}, skipRetry: true},
		{name: "unknown variant", err: services.ErrUnknownVariant, skipRetry: true},
		{name: "upstream", err: &analyze.Error{Kind: analyze.ErrUpstreamFailure, Err: errors.New("429")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockAnalyzer{}
			m.On("Analyze", mock.Anything, mock.Anything).Return(nil, tt.err)

			err := HandleAnalysisRun(AnalysisDeps{Analyzer: m})(context.Background(), newTask(t, tasks.AnalysisPayload{AnalysisID: uuid.New(), Prompt: "x"}))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
		})
	}
}

func TestHandleAnalysisRun_PassesRetryState(t *testing.T) {
	for _, left := range []bool{true, false} {
		m := &mockAnalyzer{}
		m.On("Analyze", mock.Anything, mock.MatchedBy(func(req services.AnalyzeRequest) bool {
			return req.Retryable == left
		})).Return(nil, &analyze.Error{Kind: analyze.ErrUpstreamFailure, Err: errors.New("503")})

		h := HandleAnalysisRun(AnalysisDeps{
			Analyzer:    m,
			RetriesLeft: func(context.Context) bool { return left },
		})
		err := h(context.Background(), newTask(t, tasks.AnalysisPayload{AnalysisID: uuid.New(), Prompt: "x"}))
		require.Error(t, err)
		assert.False(t, errors.Is(err, asynq.SkipRetry))
		m.AssertExpectations(t)
	}
}

func TestAsynqRetriesLeft_NoTaskMetadata(t *testing.T) {
	assert.False(t, asynqRetriesLeft(context.Background()))
}

func TestHandleAnalysisRun_BadPayload(t *testing.T) {
	m := &mockAnalyzer{}
	err := HandleAnalysisRun(AnalysisDeps{Analyzer: m})(context.Background(), asynq.NewTask(tasks.TypeAnalysisRun, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	m.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestRegisterHandlers(t *testing.T) {
	mux := asynq.NewServeMux()
	RegisterHandlers(mux, AnalysisDeps{Analyzer: &mockAnalyzer{}})
	h, pattern := mux.Handler(asynq.NewTask(tasks.TypeAnalysisRun, nil))
	assert.Equal(t, tasks.TypeAnalysisRun, pattern)
	assert.NotNil(t, h)
}
