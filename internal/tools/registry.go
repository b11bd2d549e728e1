// Package tools keeps the named meeting actions the dispatcher can execute.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/xiaot623/meetagent/internal/domain"
)

// Invocation is one call of a tool.
type Invocation struct {
	Args json.RawMessage
	// Meetings is the snapshot taken at the start of the turn.
	Meetings []domain.Meeting
}

// Result is what a tool hands back to the conversation.
type Result struct {
	Reply string
	// Collecting is set when the tool needs the user to follow up.
	Collecting domain.Collecting
}

// ExecutorFunc runs one meeting tool.
type ExecutorFunc func(ctx context.Context, inv Invocation) (Result, error)

// Registry maps tool names to executors. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]ExecutorFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[string]ExecutorFunc),
	}
}

// Register binds exec to name. Names are registered once.
func (r *Registry) Register(name string, exec ExecutorFunc) error {
	switch {
	case name == "":
		return errors.New("register tool: empty name")
	case exec == nil:
		return fmt.Errorf("register tool %s: nil executor", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.executors[name]; dup {
		return fmt.Errorf("register tool %s: already registered", name)
	}
	r.executors[name] = exec
	return nil
}

// MustRegister is Register for wiring code; it panics on error.
func (r *Registry) MustRegister(name string, exec ExecutorFunc) {
	if err := r.Register(name, exec); err != nil {
		panic(err)
	}
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	return r.lookup(name) != nil
}

func (r *Registry) lookup(name string) ExecutorFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.executors[name]
}

// Names lists the registered tools alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Execute runs the tool called name.
func (r *Registry) Execute(ctx context.Context, name string, inv Invocation) (Result, error) {
	exec := r.lookup(name)
	if exec == nil {
		return Result{}, fmt.Errorf("execute tool %q: not registered", name)
	}
	return exec(ctx, inv)
}
