package ctl

import (
	"fmt"
	"net/url"
)

// FrequencyOptions selects one channel.
type FrequencyOptions struct {
	Selector   Selector
	Modulation string
	JSON       bool
}

// Frequency looks up the carrier frequency of one channel.
func Frequency(baseURL string, opts FrequencyOptions) error {
	q := url.Values{}
	q.Set("band", opts.Selector.Band)
	q.Set("channel", opts.Selector.Channel)
	if opts.Selector.Range != "" {
		q.Set("range", opts.Selector.Range)
	}
	if opts.Modulation != "" {
		q.Set("modulation", opts.Modulation)
	}

	var resp struct {
		Frequency float64 `json:"frequency"`
		Unit      string  `json:"unit"`
	}
	if err := getJSON(baseURL, "/api/frequency", q, &resp); err != nil {
		return err
	}
	if opts.JSON {
		return printJSON(resp)
	}

	fmt.Fprintf(stdout, "\n  %s  %s\n\n", colorize(bold, opts.Selector.label()), fmt.Sprintf("%g %s", resp.Frequency, resp.Unit))
	return nil
}
