package target

import (
	"context"
	"sync"
)

// MockTarget implements Target for testing. It replays scripted outputs and
// records inputs; individual calls can be made to fail.
type MockTarget struct {
	mu      sync.Mutex
	outputs []string
	index   int
	inputs  []string

	// failAt maps call numbers (0-based) to the error returned for that call.
	failAt map[int]error
	err    error
}

// NewMockTarget creates a mock target with scripted outputs, cycling when
// exhausted.
func NewMockTarget(outputs ...string) *MockTarget {
	return &MockTarget{
		outputs: outputs,
		failAt:  make(map[int]error),
	}
}

// Name identifies the mock target.
func (t *MockTarget) Name() string { return "mock" }

// Respond replays the next scripted output.
func (t *MockTarget) Respond(ctx context.Context, input string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	call := len(t.inputs)
	t.inputs = append(t.inputs, input)

	if err, ok := t.failAt[call]; ok {
		return "", err
	}
	if t.err != nil {
		return "", t.err
	}
	if len(t.outputs) == 0 {
		return "", nil
	}

	output := t.outputs[t.index%len(t.outputs)]
	t.index++
	return output, nil
}

// FailCall makes the n-th Respond call (0-based) return err.
func (t *MockTarget) FailCall(n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failAt[n] = err
}

// Fail makes every subsequent Respond call return err.
func (t *MockTarget) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = err
}

// Inputs returns all inputs received so far.
func (t *MockTarget) Inputs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	inputs := make([]string, len(t.inputs))
	copy(inputs, t.inputs)
	return inputs
}

// CallCount returns the number of Respond calls received.
func (t *MockTarget) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inputs)
}
