package ctl

import (
	"strings"

	"github.com/pkg/errors"
)

// Selector is one channel named on the command line.
type Selector struct {
	Band       string `json:"band"`
	Channel    string `json:"channel"`
	Range      string `json:"range,omitempty"`
	Modulation string `json:"modulation,omitempty"`
}

// ParseSelector reads BAND:CHANNEL, for example "R:1" or "D:10".
func ParseSelector(s string) (Selector, error) {
	band, ch, ok := strings.Cut(strings.TrimSpace(s), ":")
	band, ch = strings.TrimSpace(band), strings.TrimSpace(ch)
	if !ok || band == "" || ch == "" || strings.Contains(ch, ":") {
		return Selector{}, errors.Errorf("invalid channel %q, want BAND:CHANNEL", s)
	}
	return Selector{Band: strings.ToUpper(band), Channel: ch}, nil
}

// ParseSelectors parses every argument, applying rng to each selector.
func ParseSelectors(args []string, rng string) ([]Selector, error) {
	if len(args) == 0 {
		return nil, errors.New("at least one BAND:CHANNEL is required")
	}
	out := make([]Selector, 0, len(args))
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			sel, err := ParseSelector(part)
			if err != nil {
				return nil, err
			}
			sel.Range = rng
			out = append(out, sel)
		}
	}
	return out, nil
}

func (s Selector) label() string {
	return s.Band + s.Channel
}
