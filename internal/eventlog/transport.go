package eventlog

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/tidwall/sjson"
)

// Recorder receives completed API calls
type Recorder interface {
	RecordAPICall(method, url string, request, response json.RawMessage) APICallEvent
}

// RecordingTransport records every request that passes through it.
// Transport failures are recorded with status 0 and an error field, then
// returned unchanged.
type RecordingTransport struct {
	Base     http.RoundTripper
	Recorder Recorder
	// MaxBody caps the captured body size; zero means 64 KiB.
	MaxBody int64
}

const defaultMaxBody = 64 << 10

// RoundTrip leaves the caller's request untouched. When the body cannot be
// replayed through GetBody it is buffered and sent on a clone.
func (t *RecordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	reqPayload := payload(nil, "headers", flatten(req.Header))
	out, reqBody, err := t.captureRequest(req)
	if err != nil {
		t.recordFailure(req, reqPayload, err)
		return nil, err
	}
	reqPayload = withBody(reqPayload, reqBody)

	resp, err := base.RoundTrip(out)
	if err != nil {
		t.recordFailure(req, reqPayload, err)
		return nil, err
	}

	respBody, err := t.captureResponse(resp)
	if err != nil {
		resp.Body.Close()
		t.recordFailure(req, reqPayload, err)
		return nil, err
	}
	respPayload := payload(nil, "status", resp.StatusCode)
	respPayload = payload(respPayload, "headers", flatten(resp.Header))
	respPayload = withBody(respPayload, respBody)

	t.Recorder.RecordAPICall(req.Method, req.URL.String(), reqPayload, respPayload)
	return resp, nil
}

func (t *RecordingTransport) recordFailure(req *http.Request, reqPayload []byte, err error) {
	respPayload := payload(nil, "status", 0)
	respPayload = payload(respPayload, "error", err.Error())
	t.Recorder.RecordAPICall(req.Method, req.URL.String(), reqPayload, respPayload)
}

func (t *RecordingTransport) limit() int64 {
	if t.MaxBody > 0 {
		return t.MaxBody
	}
	return defaultMaxBody
}

// captureRequest returns the request to send and the captured body prefix
func (t *RecordingTransport) captureRequest(req *http.Request) (*http.Request, []byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return req, nil, nil
	}
	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err != nil {
			req.Body.Close()
			return nil, nil, err
		}
		defer rc.Close()
		body, err := io.ReadAll(io.LimitReader(rc, t.limit()))
		if err != nil {
			req.Body.Close()
			return nil, nil, err
		}
		return req, body, nil
	}

	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, nil, err
	}
	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(body))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return out, truncate(body, t.limit()), nil
}

// captureResponse reads at most limit bytes and puts them back in front of
// the unread remainder.
func (t *RecordingTransport) captureResponse(resp *http.Response) ([]byte, error) {
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, t.limit()))
	if err != nil {
		return nil, err
	}
	resp.Body = &prefixedBody{
		Reader: io.MultiReader(bytes.NewReader(body), resp.Body),
		Closer: resp.Body,
	}
	return body, nil
}

type prefixedBody struct {
	io.Reader
	io.Closer
}

func truncate(b []byte, n int64) []byte {
	if int64(len(b)) > n {
		return b[:n]
	}
	return b
}

func flatten(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

func payload(doc []byte, path string, value any) []byte {
	if doc == nil {
		doc = []byte("{}")
	}
	out, err := sjson.SetBytes(doc, path, value)
	if err != nil {
		return doc
	}
	return out
}

// withBody embeds body as JSON when it parses, otherwise as a string
func withBody(doc, body []byte) []byte {
	if len(body) == 0 {
		return doc
	}
	if json.Valid(body) {
		if out, err := sjson.SetRawBytes(doc, "body", body); err == nil {
			return out
		}
	}
	return payload(doc, "body", string(body))
}
