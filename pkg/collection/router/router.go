// Package router maps operation names to handlers, each declaring the
// capability its caller must hold.
package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/storacha/batchmint/pkg/collection/access"
	"github.com/storacha/batchmint/pkg/collection/types"
	"github.com/storacha/go-ucanto/did"
)

var (
	// ErrUnknownOperation indicates a dispatch to an operation with no route.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrDuplicateOperation indicates a second route for the same operation.
	ErrDuplicateOperation = errors.New("operation already routed")
	// ErrInvalidArgs indicates arguments that could not be decoded for an
	// operation.
	ErrInvalidArgs = errors.New("invalid arguments")
)

// Handler runs an operation for caller with JSON encoded arguments.
type Handler func(ctx context.Context, caller did.DID, args json.RawMessage) (any, error)

// Route pairs a handler with the capability required to call it.
type Route struct {
	Capability access.Capability
	Handler    Handler
}

// Router is a routing table built once at start-up.
type Router struct {
	gate   access.Gate
	routes map[string]Route
}

// New creates an empty router checking capabilities against gate.
func New(gate access.Gate) *Router {
	return &Router{gate: gate, routes: make(map[string]Route)}
}

// Handle adds a route for the named operation.
func (r *Router) Handle(name string, route Route) error {
	if name == "" {
		return types.ErrEmpty{Field: "operation"}
	}
	if route.Handler == nil {
		return types.ErrEmpty{Field: "handler"}
	}
	if _, err := route.Capability.Roles(); err != nil {
		return fmt.Errorf("routing %q: %w", name, err)
	}
	if _, ok := r.routes[name]; ok {
		return fmt.Errorf("routing %q: %w", name, ErrDuplicateOperation)
	}
	r.routes[name] = route
	return nil
}

// Route returns the route of the named operation.
func (r *Router) Route(name string) (Route, bool) {
	route, ok := r.routes[name]
	return route, ok
}

// Operations returns the routed operation names, sorted.
func (r *Router) Operations() []string {
	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Dispatch checks that caller holds the capability of the named operation and
// then runs its handler.
func (r *Router) Dispatch(ctx context.Context, caller did.DID, name string, args json.RawMessage) (any, error) {
	route, ok := r.routes[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownOperation)
	}
	if err := access.Check(ctx, r.gate, caller, route.Capability); err != nil {
		return nil, err
	}
	return route.Handler(ctx, caller, args)
}

// DecodeArgs decodes JSON arguments into a T, rejecting unknown fields. Empty
// arguments decode to the zero T.
func DecodeArgs[T any](args json.RawMessage) (T, error) {
	var v T
	if len(bytes.TrimSpace(args)) == 0 {
		return v, nil
	}
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	return v, nil
}
