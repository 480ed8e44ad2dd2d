package collector

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidSymbol is returned for input that cannot be a ticker.
var ErrInvalidSymbol = errors.New("invalid stock symbol")

var tickerPattern = regexp.MustCompile(`^[A-Z0-9&.-]{1,20}$`)

// Resolver maps user-entered text to a provider ticker.
type Resolver struct {
	Suffix  string            // exchange suffix appended when missing, e.g. ".NS"
	Aliases map[string]string // upper-case name -> ticker without suffix
}

// NewResolver creates a Resolver for the given exchange suffix.
func NewResolver(suffix string, aliases map[string]string) *Resolver {
	norm := make(map[string]string, len(aliases))
	for k, v := range aliases {
		norm[strings.ToUpper(strings.TrimSpace(k))] = strings.ToUpper(strings.TrimSpace(v))
	}
	return &Resolver{Suffix: strings.ToUpper(suffix), Aliases: norm}
}

// Resolve normalizes query into a ticker such as "RELIANCE.NS".
func (r *Resolver) Resolve(query string) (string, error) {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidSymbol)
	}
	if t, ok := r.Aliases[q]; ok {
		q = t
	}
	base := q
	if r.Suffix != "" {
		base = strings.TrimSuffix(q, r.Suffix)
	}
	if !tickerPattern.MatchString(base) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, query)
	}
	return base + r.Suffix, nil
}
