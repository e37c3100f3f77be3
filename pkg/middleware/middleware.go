// Package middleware provides HTTP middleware for request logging, CORS,
// and caller principal extraction.
package middleware

import "net/http"

// Stack is an ordered collection of HTTP middleware.
type Stack struct {
	stack []func(http.Handler) http.Handler
}

// NewStack creates an empty middleware Stack.
func NewStack() *Stack {
	return &Stack{stack: []func(http.Handler) http.Handler{}}
}

// Use appends middleware to the stack.
func (s *Stack) Use(fn func(http.Handler) http.Handler) {
	s.stack = append(s.stack, fn)
}

// Apply wraps handler with the stack, outermost first.
func (s *Stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.stack) - 1; i >= 0; i-- {
		handler = s.stack[i](handler)
	}
	return handler
}
