package remote

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// PickHTTPClient returns custom when set, otherwise a client with the given timeout.
func PickHTTPClient(custom *http.Client, timeout time.Duration) *http.Client {
	if custom != nil {
		return custom
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Do sends req and returns the body of a 2xx response.
// Transport failures become *NetworkError and other statuses *HTTPStatusError.
func Do(client *http.Client, req *http.Request) ([]byte, error) {
	url := req.URL.String()
	resp, err := client.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: req.Method, URL: url, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: req.Method, URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       clipBody(body),
		}
	}
	return body, nil
}
