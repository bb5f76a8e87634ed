package web

// Query parameter parsing shared by the API handlers.

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/ferc1/internal/config"
)

var errMissing = errors.New("required")

// paramError marks a malformed query parameter.
type paramError struct {
	name string
	err  error
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %v", e.name, e.err)
}

func (e *paramError) Unwrap() error { return e.err }

// listParam splits a comma separated parameter. A missing or blank
// parameter returns nil.
func listParam(r *http.Request, name string) []string {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// yearsParam parses a year list such as "2004-2010,2015". A missing
// parameter returns nil.
func yearsParam(r *http.Request, name string) ([]int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	years, err := config.ParseYears(raw)
	if err != nil {
		return nil, &paramError{name: name, err: err}
	}
	return years, nil
}

// intParam parses an integer parameter, returning def when it is missing.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{name: name, err: err}
	}
	return v, nil
}
