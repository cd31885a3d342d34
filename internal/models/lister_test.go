package models

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func newModelsServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewLister(t *testing.T) {
	lister := NewLister("test-api-key", "")

	if lister == nil {
		t.Fatal("NewLister returned nil")
	}

	if lister.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", lister.apiKey)
	}

	if lister.client == nil {
		t.Error("OpenAI client not initialized")
	}
}

func TestListChatModels_NoAPIKey(t *testing.T) {
	lister := NewLister("", "")

	_, err := lister.ListChatModels(context.Background())
	if err == nil {
		t.Error("Expected error for missing API key")
	}
}

func TestListChatModels_FiltersAndSorts(t *testing.T) {
	server := newModelsServer(t, `{"object":"list","data":[
		{"id":"gpt-4o-mini","object":"model"},
		{"id":"tts-1","object":"model"},
		{"id":"dall-e-3","object":"model"},
		{"id":"gpt-4o","object":"model"},
		{"id":"text-embedding-3-small","object":"model"},
		{"id":"gpt-4o-audio-preview","object":"model"},
		{"id":"o3-mini","object":"model"},
		{"id":"whisper-1","object":"model"},
		{"id":"llama3.1","object":"model"}
	]}`)

	lister := NewLister("test-key", server.URL)
	got, err := lister.ListChatModels(context.Background())
	if err != nil {
		t.Fatalf("ListChatModels failed: %v", err)
	}

	want := []string{"gpt-4o", "gpt-4o-mini", "llama3.1", "o3-mini"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("model %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestListAvailableModels_Output(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "models found",
			body: `{"object":"list","data":[{"id":"gpt-4o","object":"model"}]}`,
			want: "Chat models available for translation:\n  gpt-4o\n",
		},
		{
			name: "no chat models",
			body: `{"object":"list","data":[{"id":"tts-1","object":"model"}]}`,
			want: "Chat models available for translation:\n  No chat models found\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newModelsServer(t, tt.body)
			var out bytes.Buffer

			if err := NewLister("test-key", server.URL).ListAvailableModels(context.Background(), &out); err != nil {
				t.Fatalf("ListAvailableModels failed: %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestListAvailableModels_Integration(t *testing.T) {
	// Skip if no API key
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	var out bytes.Buffer
	if err := NewLister(apiKey, "").ListAvailableModels(context.Background(), &out); err != nil {
		t.Errorf("ListAvailableModels failed: %v", err)
	}
	t.Log(out.String())
}
