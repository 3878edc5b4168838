package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
)

// NewRequestWithQueryParams builds a dashboard GET request such as
// /api/output-asset-data?unique_id=p1&asset_id=1&period=yearly. Empty values are
// kept so handlers see a present-but-blank parameter.
func NewRequestWithQueryParams(method, path string, queryParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, nil)

	q := req.URL.Query()
	for key, value := range queryParams {
		q.Set(key, value)
	}
	req.URL.RawQuery = q.Encode()

	return req
}

// NewJSONRequest builds a request carrying a raw JSON body with the matching
// Content-Type header.
func NewJSONRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
