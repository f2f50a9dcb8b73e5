// Package diag provides the diagnostic sink used across the compiler
// pipeline (spec.md §7). All passes report errors through a Sink rather
// than writing to stderr directly, grounded on the Analyzer.error/errorAt
// pair in lang/ysem/analyzer.go and the lexer's own error helper in
// lang/ylex/lexer.go.
package diag

import (
	"fmt"
	"os"
)

// Sink receives formatted diagnostics tagged with a source unit name and
// position. Implementations must be safe to call repeatedly across a single
// compilation; they are not required to be safe for concurrent use since
// spec.md §5 runs the pipeline strictly sequentially.
type Sink interface {
	Errorf(unit string, line, col int, format string, args ...interface{})
	Warnf(unit string, line, col int, format string, args ...interface{})
	Count() int
}

// StderrSink writes diagnostics to os.Stderr in the
// "<unit>:<line>:<col>: error: <msg>" form used throughout spec.md §7.
type StderrSink struct {
	count int
}

func NewStderrSink() *StderrSink { return &StderrSink{} }

func (s *StderrSink) Errorf(unit string, line, col int, format string, args ...interface{}) {
	s.count++
	fmt.Fprintf(os.Stderr, "%s:%d:%d: error: %s\n", unit, line, col, fmt.Sprintf(format, args...))
}

func (s *StderrSink) Warnf(unit string, line, col int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s:%d:%d: warning: %s\n", unit, line, col, fmt.Sprintf(format, args...))
}

func (s *StderrSink) Count() int { return s.count }

// Message is one recorded diagnostic, kept for CollectingSink's tests.
type Message struct {
	Unit       string
	Line, Col  int
	Text       string
	IsWarning  bool
}

// CollectingSink buffers diagnostics in memory instead of printing them,
// grounded on Analyzer.errors []string — generalized to keep position and
// severity instead of flattening everything to a string.
type CollectingSink struct {
	Messages []Message
}

func NewCollectingSink() *CollectingSink { return &CollectingSink{} }

func (s *CollectingSink) Errorf(unit string, line, col int, format string, args ...interface{}) {
	s.Messages = append(s.Messages, Message{Unit: unit, Line: line, Col: col, Text: fmt.Sprintf(format, args...)})
}

func (s *CollectingSink) Warnf(unit string, line, col int, format string, args ...interface{}) {
	s.Messages = append(s.Messages, Message{Unit: unit, Line: line, Col: col, Text: fmt.Sprintf(format, args...), IsWarning: true})
}

func (s *CollectingSink) Count() int {
	n := 0
	for _, m := range s.Messages {
		if !m.IsWarning {
			n++
		}
	}
	return n
}

// HasErrors reports whether any non-warning diagnostic was recorded.
func (s *CollectingSink) HasErrors() bool { return s.Count() > 0 }
