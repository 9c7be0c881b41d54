package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Path     string
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

// fakeGemini speaks just enough of the generateContent REST shape.
type fakeGemini struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req recordedRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	req.Path = r.URL.Path

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = w.Write([]byte(f.body))
}

func newTestClient(t *testing.T, fake *fakeGemini) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), Config{
		APIKey:  "test-key",
		Model:   "gemini-test",
		BaseURL: srv.URL + "/",
	})
	require.NoError(t, err)
	return client
}

const okBody = `{"candidates":[{"content":{"role":"model","parts":[{"text":"hello there"}]},"finishReason":"STOP"}]}`

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	require.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewClient(context.Background(), Config{APIKey: "   "})
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewClientDefaultModel(t *testing.T) {
	client, err := NewClient(context.Background(), Config{APIKey: "test-key"})
	require.NoError(t, err)
	require.Equal(t, DefaultModel, client.Model())
}

func TestGenerateWithoutHistory(t *testing.T) {
	fake := &fakeGemini{status: http.StatusOK, body: okBody}
	client := newTestClient(t, fake)

	reply := client.Generate(context.Background(), "hi", nil)
	require.Equal(t, "hello there", reply)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	require.True(t, strings.HasSuffix(req.Path, "models/gemini-test:generateContent"), req.Path)
	require.Len(t, req.Contents, 1)
	require.Equal(t, "user", req.Contents[0].Role)
	require.Equal(t, "hi", req.Contents[0].Parts[0].Text)
}

func TestGenerateWithHistory(t *testing.T) {
	fake := &fakeGemini{status: http.StatusOK, body: okBody}
	client := newTestClient(t, fake)

	history := []Exchange{
		{Speaker: SpeakerUser, Text: "first"},
		{Speaker: SpeakerModel, Text: "second"},
		{Speaker: SpeakerUser, Text: "third"},
	}
	reply := client.Generate(context.Background(), "third", history)
	require.Equal(t, "hello there", reply)

	require.Len(t, fake.requests, 1)
	contents := fake.requests[0].Contents
	// The seeded history comes first, in order, followed by the new message.
	require.Len(t, contents, 4)
	wantRoles := []string{"user", "model", "user", "user"}
	wantTexts := []string{"first", "second", "third", "third"}
	for i, content := range contents {
		require.Equal(t, wantRoles[i], content.Role)
		require.Equal(t, wantTexts[i], content.Parts[0].Text)
	}
}

func TestGenerateUpstreamFailureReturnsApology(t *testing.T) {
	fake := &fakeGemini{
		status: http.StatusTooManyRequests,
		body:   `{"error":{"code":429,"message":"quota exhausted","status":"RESOURCE_EXHAUSTED"}}`,
	}
	client := newTestClient(t, fake)

	reply := client.Generate(context.Background(), "hi", nil)
	require.True(t, IsApology(reply), reply)
	require.Contains(t, reply, "quota exhausted")

	reply = client.Generate(context.Background(), "hi", []Exchange{{Speaker: SpeakerUser, Text: "hi"}})
	require.True(t, IsApology(reply), reply)
}

func TestGenerateEmptyResponseReturnsApology(t *testing.T) {
	fake := &fakeGemini{status: http.StatusOK, body: `{"candidates":[]}`}
	client := newTestClient(t, fake)

	reply := client.Generate(context.Background(), "hi", nil)
	require.True(t, IsApology(reply), reply)
	require.Contains(t, reply, "empty response")
}

func TestGenerateUnreachableUpstreamReturnsApology(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL + "/"
	srv.Close()

	client, err := NewClient(context.Background(), Config{APIKey: "test-key", BaseURL: baseURL})
	require.NoError(t, err)

	reply := client.Generate(context.Background(), "hi", nil)
	require.True(t, IsApology(reply), reply)
}

func TestUpstreamErrorUnwrap(t *testing.T) {
	inner := context.DeadlineExceeded
	err := &UpstreamError{Model: "m", Err: inner}
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, "gemini m: context deadline exceeded", err.Error())
	require.Equal(t, apologyPrefix+"gemini m: context deadline exceeded", Apology(err))
}

func TestToContentsSkipsUnknownSpeakers(t *testing.T) {
	contents := toContents([]Exchange{
		{Speaker: SpeakerUser, Text: "a"},
		{Speaker: Speaker("system"), Text: "b"},
		{Speaker: SpeakerModel, Text: "c"},
	})
	require.Len(t, contents, 2)
	require.Equal(t, "user", contents[0].Role)
	require.Equal(t, "model", contents[1].Role)
}
