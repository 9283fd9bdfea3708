package todosdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// doRequest performs an HTTP request. An empty token sends no Authorization
// header.
func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path, token string,
	body io.Reader,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// Query posts a GraphQL document and decodes its data into out. The first
// GraphQL error, if any, is returned as *GraphQLError.
func (c *SDKClient) Query(ctx context.Context, token, query string, vars map[string]any, out any) error {
	payload, err := json.Marshal(Request{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, GraphQLPath, token, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	var r response
	if err := decodeJSON(resp, &r, http.StatusOK); err != nil {
		return err
	}

	if len(r.Errors) > 0 {
		first := r.Errors[0]
		first.Code, _ = first.Extensions["code"].(string)
		return first
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}

// decodeJSON decodes resp into target, or returns a typed error when the
// status is not the expected one.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// enumOrNil sends an empty enum as null so the server default applies.
func enumOrNil(v string) any {
	if v == "" {
		return nil
	}
	return v
}
