package ctl

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// PowerRatio prints the calibrated power ratio between two frequencies.
func PowerRatio(baseURL string, f1, f2 float64, jsonOutput bool) error {
	q := url.Values{}
	q.Set("f1", strconv.FormatFloat(f1, 'f', -1, 64))
	q.Set("f2", strconv.FormatFloat(f2, 'f', -1, 64))

	var resp struct {
		F1         float64 `json:"f1"`
		F2         float64 `json:"f2"`
		Separation float64 `json:"separation"`
		PowerRatio float64 `json:"power_ratio"`
	}
	if err := getJSON(baseURL, "/api/power-ratio", q, &resp); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(resp)
	}

	fmt.Fprintf(stdout, "\n  %g MHz vs %g MHz  %s\n", resp.F1, resp.F2, colorize(dim, fmt.Sprintf("(%g MHz apart)", resp.Separation)))
	fmt.Fprintf(stdout, "  %-12s %.6f  (%.1f dB)\n\n", colorize(dim, "ratio:"), resp.PowerRatio, 10*math.Log10(resp.PowerRatio))
	return nil
}

// IMD lists the intermodulation products of a set of frequencies.
func IMD(baseURL string, freqs []float64, order int, jsonOutput bool) error {
	q := url.Values{}
	for _, f := range freqs {
		q.Add("f", strconv.FormatFloat(f, 'f', -1, 64))
	}
	q.Set("order", strconv.Itoa(order))

	var resp struct {
		Frequencies []float64 `json:"frequencies"`
		Order       int       `json:"order"`
		Products    []float64 `json:"products"`
	}
	if err := getJSON(baseURL, "/api/imd", q, &resp); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(resp)
	}

	fmt.Fprintf(stdout, "\n  %s order %d, %d inputs\n", header("IMD PRODUCTS"), resp.Order, len(resp.Frequencies))
	if len(resp.Products) == 0 {
		fmt.Fprintln(stdout, colorize(dim, "  none"))
		fmt.Fprintln(stdout)
		return nil
	}
	parts := make([]string, len(resp.Products))
	for i, p := range resp.Products {
		parts[i] = fmt.Sprintf("%g", p)
	}
	fmt.Fprintf(stdout, "  %s MHz\n\n", strings.Join(parts, "  "))
	return nil
}

// ParseFrequencies reads MHz values given as separate or comma-separated
// arguments.
func ParseFrequencies(args []string) ([]float64, error) {
	var out []float64
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			f, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid frequency %q", part)
			}
			out = append(out, f)
		}
	}
	return out, nil
}
