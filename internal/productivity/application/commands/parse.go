// Package commands turns host input (CLI flags, MCP arguments) into engine
// mutations. Handlers parse and validate raw strings; the engine owns the
// local apply and the remote commit.
package commands

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// parseOptional parses s with parse unless it is blank, in which case the
// zero value is returned so domain defaults apply.
func parseOptional[T any](s string, parse func(string) (T, error)) (T, error) {
	var zero T
	if strings.TrimSpace(s) == "" {
		return zero, nil
	}
	return parse(s)
}

// parsePtr parses an optional patch field. Nil stays nil.
func parsePtr[T any](s *string, parse func(string) (T, error)) (*T, error) {
	if s == nil {
		return nil, nil
	}
	v, err := parse(*s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseID(kind, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", kind, s, err)
	}
	return id, nil
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
