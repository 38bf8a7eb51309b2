// Package warehousetest provides an in-memory Executor for tests.
package warehousetest

import (
	"context"
	"sync"

	"github.com/pbaille/autoclass/internal/warehouse"
)

// Fake answers statements from canned responses and records every call.
type Fake struct {
	mu        sync.Mutex
	responses map[string][]warehouse.Row
	failures  map[string]error
	executed  []string
}

// New returns an empty Fake; unknown statements succeed with no rows.
func New() *Fake {
	return &Fake{
		responses: make(map[string][]warehouse.Row),
		failures:  make(map[string]error),
	}
}

// Respond registers the rows returned for statement.
func (f *Fake) Respond(statement string, rows ...warehouse.Row) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[statement] = rows
	return f
}

// Fail makes statement fail with err.
func (f *Fake) Fail(statement string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[statement] = err
	return f
}

// Execute implements warehouse.Executor.
func (f *Fake) Execute(_ context.Context, statement string) ([]warehouse.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, statement)
	if err, ok := f.failures[statement]; ok {
		return nil, &warehouse.ExecutionError{Statement: statement, Err: err}
	}
	return f.responses[statement], nil
}

// Executed returns the statements seen so far, in order.
func (f *Fake) Executed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.executed...)
}

// Count returns how many times statement was executed.
func (f *Fake) Count(statement string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.executed {
		if s == statement {
			n++
		}
	}
	return n
}
