package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mu       sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id, contents string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages[id] = contents
}

func TestDumpRedacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "secret-session"})
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("welcome"))
	}))
	defer srv.Close()

	out := &memoryOutput{messages: map[string]string{}}
	client := resty.New().SetBaseURL(srv.URL)
	Dump(client, out, DefaultRedactions...)

	_, err := client.R().
		SetFormData(map[string]string{
			"login":    "user@example.com",
			"password": "hunter2",
			"_token":   "csrf-value",
		}).
		Post("/login")
	require.NoError(t, err)

	require.Len(t, out.messages, 1)
	message, ok := out.messages["001-post.txt"]
	require.True(t, ok)
	require.Contains(t, message, "POST "+srv.URL+"/login")
	require.Contains(t, message, "user%40example.com")
	require.Contains(t, message, "welcome")
	require.NotContains(t, message, "hunter2")
	require.NotContains(t, message, "csrf-value")
	require.NotContains(t, message, "secret-session")
}

func TestRedactFormLeavesOtherBodies(t *testing.T) {
	names := map[string]struct{}{"password": {}}
	require.Equal(t, `{"a":1}`, redactForm(`{"a":1}`, names))
	require.Equal(t, "login=x", redactForm("login=x", names))
	require.Equal(t, "login=x&password=%5Bredacted%5D", redactForm("login=x&password=y", names))
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")
	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	out.Write("001-get.txt", "hello")
	contents, err := os.ReadFile(filepath.Join(dir, "001-get.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(contents))
}

func TestDumpBodylessRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("login page"))
	}))
	defer srv.Close()

	out := &memoryOutput{messages: map[string]string{}}
	client := resty.New().SetBaseURL(srv.URL)
	Dump(client, out, DefaultRedactions...)

	_, err := client.R().Get("/login")
	require.NoError(t, err)

	message, ok := out.messages["001-get.txt"]
	require.True(t, ok)
	require.Contains(t, message, "GET "+srv.URL+"/login")
	require.Contains(t, message, "login page")
}
