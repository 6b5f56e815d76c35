package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Input types understood by asymmetric embedding models such as nvidia/nv-embed-v1,
// which embed search queries and indexed passages differently.
const (
	InputTypeQuery   = "query"
	InputTypePassage = "passage"
)

type inputTypeKey struct{}

// withInputType tags ctx so that an inputTypeTransport adds input_type to the request.
func withInputType(ctx context.Context, inputType string) context.Context {
	return context.WithValue(ctx, inputTypeKey{}, inputType)
}

func inputTypeFrom(ctx context.Context) string {
	v, _ := ctx.Value(inputTypeKey{}).(string)
	return v
}

// inputTypeTransport adds "input_type" to the JSON body of embedding requests whose
// context carries one. The langchaingo payload has no field for it.
type inputTypeTransport struct {
	base http.RoundTripper
}

func (t *inputTypeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	inputType := inputTypeFrom(req.Context())
	if inputType == "" || req.Method != http.MethodPost || req.Body == nil ||
		!strings.HasSuffix(req.URL.Path, "/embeddings") {
		return t.base.RoundTrip(req)
	}
	raw, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read embedding request: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode embedding request: %w", err)
	}
	payload["input_type"] = inputType
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode embedding request: %w", err)
	}

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(body))
	out.ContentLength = int64(len(body))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return t.base.RoundTrip(out)
}

// newInputTypeClient returns an HTTP client that sends input_type on embedding requests.
// A nil base uses http.DefaultTransport.
func newInputTypeClient(base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{Transport: &inputTypeTransport{base: base}}
}
