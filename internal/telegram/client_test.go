package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// botServer fakes the Bot API, recording method calls.
type botServer struct {
	mu    sync.Mutex
	calls []botCall

	updates   []Update
	failSends int
}

type botCall struct {
	Method string
	Params map[string]any
}

func (s *botServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		method := parts[len(parts)-1]

		var params map[string]any
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&params)
		}

		s.mu.Lock()
		s.calls = append(s.calls, botCall{Method: method, Params: params})
		failing := method == "sendMessage" && s.failSends > 0
		if failing {
			s.failSends--
		}
		s.mu.Unlock()

		if failing {
			fmt.Fprint(w, `{"ok":false,"error_code":429,"description":"Too Many Requests"}`)
			return
		}

		switch method {
		case "getUpdates":
			s.mu.Lock()
			updates := s.updates
			s.updates = nil
			s.mu.Unlock()
			resp := map[string]any{"ok": true, "result": updates}
			json.NewEncoder(w).Encode(resp)
		case "getFile":
			fmt.Fprint(w, `{"ok":true,"result":{"file_id":"f1","file_path":"voice/file_1.oga"}}`)
		default:
			fmt.Fprint(w, `{"ok":true,"result":{}}`)
		}
	}
}

func (s *botServer) methodCalls(method string) []botCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []botCall
	for _, c := range s.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func newTestClient(t *testing.T, srv *botServer) *Client {
	t.Helper()
	server := httptest.NewServer(srv.handler(t))
	t.Cleanup(server.Close)
	return NewClient("secret-token", nil, WithAPIBase(server.URL))
}

func TestSendMessage(t *testing.T) {
	srv := &botServer{}
	client := newTestClient(t, srv)

	if err := client.SendMessage(context.Background(), 42, "hola", ""); err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}

	calls := srv.methodCalls("sendMessage")
	if len(calls) != 1 {
		t.Fatalf("sendMessage called %d times", len(calls))
	}
	if calls[0].Params["text"] != "hola" || calls[0].Params["chat_id"] != float64(42) {
		t.Errorf("params = %v", calls[0].Params)
	}
	if _, ok := calls[0].Params["parse_mode"]; ok {
		t.Error("parse_mode sent for plain message")
	}
}

func TestSendMessageAPIError(t *testing.T) {
	srv := &botServer{failSends: 1}
	client := newTestClient(t, srv)

	err := client.SendMessage(context.Background(), 42, "hola", "")
	var apiErr *APIError
	if err == nil {
		t.Fatal("SendMessage() = nil, want error")
	}
	if !asAPIError(err, &apiErr) || apiErr.Code != 429 {
		t.Errorf("error = %v, want APIError 429", err)
	}
}

func asAPIError(err error, target **APIError) bool {
	e, ok := err.(*APIError)
	if ok {
		*target = e
	}
	return ok
}

func TestGetUpdates(t *testing.T) {
	srv := &botServer{updates: []Update{
		{UpdateID: 7, Message: &Message{MessageID: 1, Chat: Chat{ID: 42}, Text: "hola"}},
	}}
	client := newTestClient(t, srv)

	updates, err := client.GetUpdates(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetUpdates() error: %v", err)
	}
	if len(updates) != 1 || updates[0].UpdateID != 7 || updates[0].Message.Text != "hola" {
		t.Errorf("updates = %+v", updates)
	}
}

func TestDownloadFile(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/file/") {
			gotPath = r.URL.Path
			w.Write([]byte("audio-bytes"))
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":{"file_id":"f1","file_path":"voice/file_1.oga"}}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient("secret-token", nil, WithAPIBase(server.URL))
	data, err := client.DownloadFile(context.Background(), "f1")
	if err != nil {
		t.Fatalf("DownloadFile() error: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Errorf("data = %q", data)
	}
	if gotPath != "/file/botsecret-token/voice/file_1.oga" {
		t.Errorf("download path = %q", gotPath)
	}
}
