package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewInstructClient(t *testing.T) {
	client := NewInstructClient("http://localhost:8080", "test-key")
	if client == nil {
		t.Fatal("NewInstructClient() returned nil")
	}
	if client.BaseURL != "http://localhost:8080" {
		t.Errorf("NewInstructClient() BaseURL = %v, want http://localhost:8080", client.BaseURL)
	}
	if client.APIKey != "test-key" {
		t.Errorf("NewInstructClient() APIKey = %v, want test-key", client.APIKey)
	}
	if client.client == nil {
		t.Error("NewInstructClient() client should not be nil")
	}
}

func TestInstructClient_GetInstructCompletion(t *testing.T) {
	cfg := GenerationConfig{
		ModelName: "test-model",
		StopToken: "<paragraph>",
		MaxTokens: 128,
	}

	tests := []struct {
		name       string
		prompt     string
		serverResp func(t *testing.T, w http.ResponseWriter, r *http.Request)
		want       string
		wantErr    bool
	}{
		{
			name:   "successful completion",
			prompt: "Explain entropy.",
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/v1/completions" {
					t.Errorf("expected /v1/completions, got %s", r.URL.Path)
				}
				if !strings.Contains(r.Header.Get("Authorization"), "Bearer") {
					t.Error("missing Authorization header")
				}

				var req CompletionRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Fatalf("failed to decode request: %v", err)
				}
				if req.Model != "test-model" {
					t.Errorf("request model = %q, want test-model", req.Model)
				}
				if len(req.Prompt) != 1 || req.Prompt[0] != "Explain entropy." {
					t.Errorf("request prompt = %v", req.Prompt)
				}
				if len(req.Stop) != 1 || req.Stop[0] != "<paragraph>" {
					t.Errorf("request stop = %v, want [<paragraph>]", req.Stop)
				}

				resp := CompletionResponse{
					ID:     "test-id",
					Object: "text_completion",
					Choices: []CompletionChoice{
						{Index: 0, Text: "Entropy measures disorder.", FinishReason: "stop"},
					},
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			},
			want: "Entropy measures disorder.",
		},
		{
			name:   "no choices returned",
			prompt: "Hello",
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				resp := CompletionResponse{ID: "test-id", Choices: []CompletionChoice{}}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			},
			wantErr: true,
		},
		{
			name:   "server error",
			prompt: "Hello",
			serverResp: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("internal server error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.serverResp(t, w, r)
			}))
			defer server.Close()

			client := NewInstructClient(server.URL, "test-key")
			got, err := client.GetInstructCompletion(context.Background(), tt.prompt, cfg)

			if tt.wantErr {
				if err == nil {
					t.Errorf("GetInstructCompletion() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("GetInstructCompletion() unexpected error: %v", err)
				return
			}
			if got != tt.want {
				t.Errorf("GetInstructCompletion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstructClient_GetBatchInstructCompletion(t *testing.T) {
	cfg := GenerationConfig{ModelName: "test-model"}

	t.Run("results follow prompt order even when choices are shuffled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := CompletionResponse{
				Choices: []CompletionChoice{
					{Index: 2, Text: "third"},
					{Index: 0, Text: "first"},
					{Index: 1, Text: "second"},
				},
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := NewInstructClient(server.URL, "test-key")
		got, err := client.GetBatchInstructCompletion(context.Background(), []string{"a", "b", "c"}, cfg)
		if err != nil {
			t.Fatalf("GetBatchInstructCompletion() unexpected error: %v", err)
		}
		want := []string{"first", "second", "third"}
		if len(got) != len(want) {
			t.Fatalf("GetBatchInstructCompletion() returned %d results, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("result[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("choice count mismatch is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := CompletionResponse{
				Choices: []CompletionChoice{{Index: 0, Text: "only one"}},
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := NewInstructClient(server.URL, "test-key")
		_, err := client.GetBatchInstructCompletion(context.Background(), []string{"a", "b"}, cfg)
		if err == nil {
			t.Error("GetBatchInstructCompletion() expected error on choice count mismatch")
		}
	})

	t.Run("empty prompt list is rejected", func(t *testing.T) {
		client := NewInstructClient("http://localhost:1", "test-key")
		_, err := client.GetBatchInstructCompletion(context.Background(), nil, cfg)
		if err == nil {
			t.Error("GetBatchInstructCompletion() expected error for empty prompts")
		}
	})
}
