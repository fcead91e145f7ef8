// Package sheet is the default sink for generated CSS rules.
//
// It stands in for a document stylesheet: every rule is parsed before it
// is accepted, so rules a browser would reject never reach the output.
package sheet

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrInvalidRule is returned by Insert for rules that fail to parse.
var ErrInvalidRule = errors.New("invalid CSS rule")

// Sheet buffers accepted rules in insertion order.
// It is safe for concurrent use.
type Sheet struct {
	log *zap.Logger

	mu      sync.Mutex
	rules   []string
	flushed int
}

// New creates an empty sheet. A nil logger disables diagnostics.
func New(log *zap.Logger) *Sheet {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sheet{log: log.Named("sheet")}
}

// Insert validates rule and appends it. Invalid rules are logged and
// dropped; the sheet stays usable for subsequent rules.
func (s *Sheet) Insert(rule string) error {
	if err := Validate(rule); err != nil {
		s.log.Warn("Rejected CSS rule", zap.String("rule", rule), zap.Error(err))
		return err
	}
	s.mu.Lock()
	s.rules = append(s.rules, rule)
	s.mu.Unlock()
	return nil
}

// Rules returns a copy of every accepted rule.
func (s *Sheet) Rules() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.rules...)
}

// Len returns the number of accepted rules.
func (s *Sheet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rules)
}

// String returns all accepted rules, one per line.
func (s *Sheet) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return join(s.rules)
}

// Flush returns the rules accepted since the previous Flush.
func (s *Sheet) Flush() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := join(s.rules[s.flushed:])
	s.flushed = len(s.rules)
	return out
}

// Reset drops every rule.
func (s *Sheet) Reset() {
	s.mu.Lock()
	s.rules = nil
	s.flushed = 0
	s.mu.Unlock()
}

func join(rules []string) string {
	if len(rules) == 0 {
		return ""
	}
	return strings.Join(rules, "\n") + "\n"
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRule, fmt.Sprintf(format, args...))
}
