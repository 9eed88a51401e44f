package analyze

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"promptchart/pkg/category"
	"promptchart/pkg/extract"
	"promptchart/pkg/normalize"
)

type mockPattern struct {
	mock.Mock
}

func (m *mockPattern) Extract(text string) []category.Category {
	args := m.Called(text)
	if v := args.Get(0); v != nil {
		return v.([]category.Category)
	}
	return nil
}

type mockModel struct {
	mock.Mock
}

func (m *mockModel) Extract(ctx context.Context, text string) (extract.ModelResult, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(extract.ModelResult), args.Error(1)
}

func TestPipeline_EmptyPromptNeverExtracts(t *testing.T) {
	pattern := new(mockPattern)
	model := new(mockModel)
	var states []State
	p := New(pattern, model, WithTransitionHook(func(_, to State) { states = append(states, to) }))

	for _, prompt := range []string{"", "   ", "\n\t"} {
		states = nil
		_, err := p.Run(context.Background(), prompt)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, []State{StateFailed}, states, "never enters extracting")
	}
	pattern.AssertNotCalled(t, "Extract", mock.Anything)
	model.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestPipeline_PatternPathSkipsModel(t *testing.T) {
	model := new(mockModel)
	var states []State
	p := New(nil, model, WithTransitionHook(func(_, to State) { states = append(states, to) }))

	res, err := p.Run(context.Background(), "15% regular items, 30% premium items and 55% deluxe items")
	require.NoError(t, err)
	assert.Equal(t, SourcePattern, res.Source)
	assert.Equal(t, []category.Category{
		{Name: "regular items", Value: 15},
		{Name: "premium items", Value: 30},
		{Name: "deluxe items", Value: 55},
	}, res.Categories)
	assert.Equal(t, []State{StateExtracting, StateNormalizing, StateDone}, states)
	model.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestPipeline_FallsBackToModel(t *testing.T) {
	prompt := "3 items at $10 each"
	model := new(mockModel)
	model.On("Extract", mock.Anything, prompt).Return(extract.ModelResult{
		Entries: []category.Entry{
			{Name: "Regular Items", Value: float64(60)},
			{Name: " Premium Items ", Value: "30"},
		},
		Raw: `{"data":[]}`,
	}, nil).Once()

	res, err := New(nil, model).Run(context.Background(), prompt)
	require.NoError(t, err)
	assert.Equal(t, SourceModel, res.Source)
	assert.Equal(t, []category.Category{
		{Name: "Regular Items", Value: 67},
		{Name: "Premium Items", Value: 33},
	}, res.Categories)
	assert.Equal(t, `{"data":[]}`, res.ModelReply)
	model.AssertExpectations(t)
}

func TestPipeline_UpstreamFailure(t *testing.T) {
	model := new(mockModel)
	model.On("Extract", mock.Anything, mock.Anything).
		Return(extract.ModelResult{}, errors.New("429 quota exceeded")).Once()
	var last State
	p := New(nil, model, WithTransitionHook(func(_, to State) { last = to }))

	_, err := p.Run(context.Background(), "no percentages here")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamFailure)
	assert.NotErrorIs(t, err, ErrNoExtractableData)
	assert.Equal(t, StateFailed, last)

	var runErr *Error
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, "429 quota exceeded", runErr.Details())
	assert.Equal(t, ErrUpstreamFailure, KindOf(err))
}

func TestPipeline_MalformedReplyBecomesNoData(t *testing.T) {
	model := new(mockModel)
	model.On("Extract", mock.Anything, mock.Anything).Return(extract.ModelResult{
		Entries:   []category.Entry{},
		Raw:       "sorry, I cannot help",
		Malformed: extract.ErrMalformedResponse,
	}, nil).Once()

	_, err := New(nil, model).Run(context.Background(), "tell me a joke")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoExtractableData)
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.ErrorIs(t, err, normalize.ErrNoValidData)
	assert.NotErrorIs(t, err, ErrUpstreamFailure)
}

func TestPipeline_ModelReturnsOnlyInvalidEntries(t *testing.T) {
	model := new(mockModel)
	model.On("Extract", mock.Anything, mock.Anything).Return(extract.ModelResult{
		Entries: []category.Entry{{Name: "", Value: 10}, {Name: "x", Value: 0}},
	}, nil).Once()

	_, err := New(nil, model).Run(context.Background(), "whatever")
	assert.ErrorIs(t, err, ErrNoExtractableData)
}

func TestPipeline_NoModelConfigured(t *testing.T) {
	_, err := New(nil, nil).Run(context.Background(), "3 items at $10 each")
	assert.ErrorIs(t, err, ErrUpstreamFailure)
}

func TestPipeline_AgeDemographics(t *testing.T) {
	reply := `{"data":[{"name":"aged 25-34","value":40},{"name":"aged 45+","value":35},{"name":"aged 18-24","value":25}]}`
	client := extract.CompleterFunc(func(context.Context, extract.CompletionRequest) (string, error) {
		return reply, nil
	})
	model, err := extract.NewModelExtractor(client, extract.ModelConfig{Variant: extract.VariantAgeDemographics})
	require.NoError(t, err)

	p := New(nil, model, WithNormalizer(&normalize.Normalizer{
		Tolerance:           normalize.DefaultTolerance,
		SortByLeadingNumber: true,
	}))
	res, err := p.Run(context.Background(), "survey respondents by age")
	require.NoError(t, err)
	assert.Equal(t, []category.Category{
		{Name: "aged 18-24", Value: 25},
		{Name: "aged 25-34", Value: 40},
		{Name: "aged 45+", Value: 35},
	}, res.Categories)
}

func TestPipeline_ConcurrentRuns(t *testing.T) {
	p := New(nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.Run(context.Background(), "50% cats, 50% dogs")
			if assert.NoError(t, err) {
				assert.Len(t, res.Categories, 2)
			}
		}()
	}
	wg.Wait()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "state(9)", State(9).String())
}
