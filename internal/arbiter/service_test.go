package arbiter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/imh0ng/open-machina/internal/config"
	"github.com/imh0ng/open-machina/internal/judge"
	"github.com/imh0ng/open-machina/internal/types"
)

type mockInvoker struct {
	mock.Mock
}

func (m *mockInvoker) Complete(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}

const validDeferResponse = `{
  "action": "defer",
  "confidence": 0.9,
  "reason": "the new instruction outranks the running job",
  "priority": "high",
  "deferUntil": "2099-01-01T00:00:00.000Z"
}`

const validContinueResponse = `{
  "action": "continue",
  "confidence": 0.75,
  "reason": "the message is only a status question",
  "priority": "low"
}`

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Judge.Provider = "openai"
	cfg.Judge.Model = "gpt-4o"
	cfg.Judge.APIKey = "sk-test"
	return cfg
}

func newTestService(t *testing.T, invoker *mockInvoker, opts ...Option) *Service {
	t.Helper()
	opts = append(opts, WithInvokerFactory(func(runtime *judge.Runtime) (judge.Invoker, error) {
		return invoker, nil
	}))
	return NewService(testConfig(), opts...)
}

func TestHandleMessage_MarkerShortCircuits(t *testing.T) {
	invoker := &mockInvoker{}
	svc := newTestService(t, invoker)
	svc.ToolStarted("s1", "search", "c1", "daily indexing")

	text := ControlMarker + " continue-current-plan\n\nhello again"
	out, err := svc.HandleMessage(context.Background(), "s1", text)
	require.NoError(t, err)
	assert.Equal(t, text, out)
	invoker.AssertNumberOfCalls(t, "Complete", 0)
}

func TestHandleMessage_NoActiveWorkShortCircuits(t *testing.T) {
	invoker := &mockInvoker{}
	svc := newTestService(t, invoker)

	out, err := svc.HandleMessage(context.Background(), "s1", "what is the weather")
	require.NoError(t, err)
	assert.Equal(t, "what is the weather", out)
	invoker.AssertNumberOfCalls(t, "Complete", 0)
}

func TestHandleMessage_FinishedWorkDoesNotTriggerArbitration(t *testing.T) {
	invoker := &mockInvoker{}
	svc := newTestService(t, invoker)
	svc.ToolStarted("s1", "search", "c1", "daily indexing")
	svc.ToolFinished("s1", "search", "c1")

	out, err := svc.HandleMessage(context.Background(), "s1", "new instruction")
	require.NoError(t, err)
	assert.Equal(t, "new instruction", out)
	invoker.AssertNumberOfCalls(t, "Complete", 0)
}

func TestHandleMessage_DeferInjectsControlBlock(t *testing.T) {
	invoker := &mockInvoker{}
	invoker.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(validDeferResponse, nil).Once()

	svc := newTestService(t, invoker)
	svc.ToolStarted("s1", "search", "c1", "daily indexing")

	out, err := svc.HandleMessage(context.Background(), "s1", "drop that and review this PR")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, ControlMarker))
	assert.Contains(t, out, "deferred=1")
	assert.Contains(t, out, `head: "daily indexing (until 2099-01-01T00:00:00.000Z)"`)
	assert.Contains(t, out, "decision: action=defer priority=high confidence=0.90")
	assert.True(t, strings.HasSuffix(out, "drop that and review this PR"))
	invoker.AssertExpectations(t)

	// A deferred item is no longer active, so the next message passes through.
	out, err = svc.HandleMessage(context.Background(), "s1", "and another thing")
	require.NoError(t, err)
	assert.Equal(t, "and another thing", out)
}

func TestHandleMessage_AbortClearsSession(t *testing.T) {
	invoker := &mockInvoker{}
	invoker.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"action":"abort","confidence":1.0,"reason":"explicit stop","priority":"critical"}`, nil).Once()

	aborts := 0
	svc := newTestService(t, invoker, WithSessionControl(SessionControl{
		Abort: func(ctx context.Context, sessionID string) error {
			aborts++
			return nil
		},
	}))
	svc.ToolStarted("s1", "deploy", "c1", "rolling deploy")

	out, err := svc.HandleMessage(context.Background(), "s1", "stop everything now")
	require.NoError(t, err)
	assert.Equal(t, 1, aborts)
	assert.Contains(t, out, "continue-current-plan")

	snap := svc.SessionSnapshot("s1")
	assert.Empty(t, snap.Deferred)
	assert.Empty(t, snap.Parallel)
}

func TestHandleMessage_RepairRetryRecovers(t *testing.T) {
	invoker := &mockInvoker{}
	invoker.On("Complete", mock.Anything, mock.Anything, mock.MatchedBy(func(p string) bool {
		return !strings.Contains(p, "previous answer was invalid")
	})).Return("not json at all", nil).Once()
	invoker.On("Complete", mock.Anything, mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "previous answer was invalid")
	})).Return(validContinueResponse, nil).Once()

	svc := newTestService(t, invoker)
	svc.ToolStarted("s1", "search", "c1", "daily indexing")

	out, err := svc.HandleMessage(context.Background(), "s1", "how is it going?")
	require.NoError(t, err)
	assert.Contains(t, out, "decision: action=continue")
	invoker.AssertExpectations(t)
	invoker.AssertNumberOfCalls(t, "Complete", 2)
}

func TestHandleMessage_JudgeUnconfigured(t *testing.T) {
	invoker := &mockInvoker{}
	cfg := config.DefaultConfig()
	svc := NewService(cfg, WithInvokerFactory(func(runtime *judge.Runtime) (judge.Invoker, error) {
		return invoker, nil
	}))
	svc.ToolStarted("s1", "search", "c1", "daily indexing")

	_, err := svc.HandleMessage(context.Background(), "s1", "new instruction")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.NewError(types.AUTONOMY_JUDGE_UNAVAILABLE, "")))
	invoker.AssertNumberOfCalls(t, "Complete", 0)
}

func TestRunDecision_ReturnsDecisionJSON(t *testing.T) {
	invoker := &mockInvoker{}
	invoker.On("Complete", mock.Anything, mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "summarize the incident")
	})).Return(validContinueResponse, nil).Once()

	svc := newTestService(t, invoker)

	out, err := svc.RunDecision(context.Background(), map[string]any{
		"userMessage": "summarize the incident",
		"timestamp":   "2026-08-23T10:00:00Z",
	})
	require.NoError(t, err)
	assert.Contains(t, out, `"action": "continue"`)
	assert.Contains(t, out, `"priority": "low"`)
	invoker.AssertExpectations(t)
}

func TestRunDecision_InvalidSnapshot(t *testing.T) {
	svc := newTestService(t, &mockInvoker{})

	_, err := svc.RunDecision(context.Background(), map[string]any{
		"userMessage": 42,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.NewError(types.ORCHESTRATION_DECISION_INVALID, "")))
}

func TestSessionEnded_EvictsAllState(t *testing.T) {
	invoker := &mockInvoker{}
	invoker.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(validDeferResponse, nil).Once()

	svc := newTestService(t, invoker)
	svc.ToolStarted("s1", "search", "c1", "daily indexing")

	_, err := svc.HandleMessage(context.Background(), "s1", "do this instead")
	require.NoError(t, err)
	require.Len(t, svc.SessionSnapshot("s1").Deferred, 1)

	svc.SessionEnded("s1")
	snap := svc.SessionSnapshot("s1")
	assert.Empty(t, snap.Deferred)
	assert.Empty(t, snap.Parallel)
}

func TestInferIntent(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"stop the deploy", "interrupt"},
		{"never mind, leave it", "interrupt"},
		{"actually do the migration instead", "redirect"},
		{"what is the progress?", "question"},
		{"index the new documents", "instruction"},
	}
	for _, tt := range tests {
		t.Run(tt.want+"/"+tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, inferIntent(tt.text))
		})
	}
}
