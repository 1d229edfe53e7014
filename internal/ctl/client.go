package ctl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var httpClient = &http.Client{Timeout: 5 * time.Second}

// stdout is where every command renders. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// endpoint joins the base URL, path, and optional query.
func endpoint(baseURL, path string, q url.Values) string {
	u := strings.TrimRight(baseURL, "/") + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// getJSON sends a GET request and decodes the JSON response into dst.
func getJSON(baseURL, path string, q url.Values, dst any) error {
	resp, err := httpClient.Get(endpoint(baseURL, path, q))
	if err != nil {
		return errors.Wrap(err, "request error")
	}
	defer resp.Body.Close()
	return decodeJSON(resp, path, dst)
}

// getRaw sends a GET request and returns the raw response body.
func getRaw(baseURL, path string, header http.Header) (int, []byte, error) {
	req, err := http.NewRequest(http.MethodGet, endpoint(baseURL, path, nil), nil)
	if err != nil {
		return 0, nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(err, "request error")
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// postJSON sends a POST request with a JSON body and decodes the response.
func postJSON(baseURL, path string, body, dst any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}
	resp, err := httpClient.Post(endpoint(baseURL, path, nil), "application/json", reqBody)
	if err != nil {
		return errors.Wrap(err, "request error")
	}
	defer resp.Body.Close()
	return decodeJSON(resp, path, dst)
}

// decodeJSON decodes a JSON response body into dst. Non-2xx responses become
// errors carrying the daemon's error message when it sent one.
func decodeJSON(resp *http.Response, path string, dst any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("HTTP %s: %s", resp.Status, apiErr.Error)
		}
		if msg := strings.TrimSpace(string(b)); msg != "" {
			return fmt.Errorf("HTTP %s: %s", resp.Status, msg)
		}
		return fmt.Errorf("HTTP %s from %s", resp.Status, path)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// printJSON prints v as indented JSON.
func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, string(b))
	return nil
}
