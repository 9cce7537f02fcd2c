package eventlog

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestRecordingTransportRecordsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"echo":` + string(body) + `}`))
	}))
	defer srv.Close()

	a := New()
	client := &http.Client{Transport: &RecordingTransport{Recorder: a}}

	resp, err := client.Post(srv.URL+"/orders", "application/json", strings.NewReader(`{"qty":2}`))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.JSONEq(t, `{"echo":{"qty":2}}`, string(body))

	logs := a.APILogs()
	require.Len(t, logs, 1)
	ev := logs[0]
	assert.Equal(t, "POST", ev.Method)
	assert.Equal(t, srv.URL+"/orders", ev.URL)
	assert.Equal(t, 201, ev.Status())
	assert.Equal(t, SeveritySuccess, ev.Severity())
	assert.Equal(t, int64(2), gjson.GetBytes(ev.Request, "body.qty").Int())
	assert.Equal(t, int64(2), gjson.GetBytes(ev.Response, "body.echo.qty").Int())
	assert.Equal(t, "application/json", gjson.GetBytes(ev.Response, "headers.Content-Type").String())
	assert.True(t, a.Surfaced())
}

func TestRecordingTransportPlainTextBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	a := New()
	client := &http.Client{Transport: &RecordingTransport{Recorder: a}}

	resp, err := client.Get(srv.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()

	ev := a.APILogs()[0]
	assert.Equal(t, SeverityError, ev.Severity())
	assert.Equal(t, "nope\n", gjson.GetBytes(ev.Response, "body").String())
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestRecordingTransportRecordsFailures(t *testing.T) {
	a := New()
	rt := &RecordingTransport{Base: failingTransport{}, Recorder: a}

	req, err := http.NewRequest(http.MethodGet, "http://localhost:1/ping", nil)
	require.NoError(t, err)

	_, err = rt.RoundTrip(req)
	require.Error(t, err)

	ev := a.APILogs()[0]
	assert.Equal(t, 0, ev.Status())
	assert.Equal(t, SeverityNeutral, ev.Severity())
	assert.Equal(t, "connection refused", gjson.GetBytes(ev.Response, "error").String())
}

// echoTransport answers 200 with the request body it received
type echoTransport struct {
	got []byte
}

func (e *echoTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		e.got, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader("ok")),
		Request:    req,
	}, nil
}

// onlyReader hides any concrete type so NewRequest sets no GetBody
type onlyReader struct{ io.Reader }

func TestRecordingTransportLeavesRequestUntouched(t *testing.T) {
	a := New()
	base := &echoTransport{}
	rt := &RecordingTransport{Base: base, Recorder: a}

	req, err := http.NewRequest(http.MethodPost, "http://example.test/items", onlyReader{strings.NewReader(`{"id":7}`)})
	require.NoError(t, err)
	require.Nil(t, req.GetBody)
	original := req.Body

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Same(t, original, req.Body)
	assert.Equal(t, `{"id":7}`, string(base.got))
	assert.Equal(t, int64(7), gjson.GetBytes(a.APILogs()[0].Request, "body.id").Int())
}

func TestRecordingTransportUsesGetBody(t *testing.T) {
	a := New()
	base := &echoTransport{}
	rt := &RecordingTransport{Base: base, Recorder: a}

	req, err := http.NewRequest(http.MethodPut, "http://example.test/items/1", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, err)
	original := req.Body

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Same(t, original, req.Body)
	assert.Equal(t, `{"name":"x"}`, string(base.got))
	assert.Equal(t, "x", gjson.GetBytes(a.APILogs()[0].Request, "body.name").String())
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestRecordingTransportRecordsBodyReadFailure(t *testing.T) {
	a := New()
	base := &echoTransport{}
	rt := &RecordingTransport{Base: base, Recorder: a}

	req, err := http.NewRequest(http.MethodPost, "http://example.test/upload", brokenReader{})
	require.NoError(t, err)

	_, err = rt.RoundTrip(req)
	require.Error(t, err)

	logs := a.APILogs()
	require.Len(t, logs, 1)
	assert.Equal(t, 0, logs[0].Status())
	assert.Equal(t, "disk gone", gjson.GetBytes(logs[0].Response, "error").String())
	assert.Nil(t, base.got)
}

func TestRecordingTransportCapsCapturedResponse(t *testing.T) {
	full := strings.Repeat("0123456789", 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(full))
	}))
	defer srv.Close()

	a := New()
	client := &http.Client{Transport: &RecordingTransport{Recorder: a, MaxBody: 8}}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, full, string(body))
	assert.Equal(t, "01234567", gjson.GetBytes(a.APILogs()[0].Response, "body").String())
}
