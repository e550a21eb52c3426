package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/agentic-research/notional/api"
)

// call is one request seen by fakeTransport.
type call struct {
	Method string
	Path   string // including the query string
	Body   string // JSON, "" for no body
}

// fakeTransport answers requests from a script keyed by "METHOD path",
// where path excludes the query string. Each key holds a queue of replies;
// the last reply repeats once the queue is down to one.
type fakeTransport struct {
	t *testing.T

	mu      sync.Mutex
	replies map[string][]reply
	calls   []call
}

type reply struct {
	body string
	err  error
}

func newFake(t *testing.T) *fakeTransport {
	return &fakeTransport{t: t, replies: make(map[string][]reply)}
}

func (f *fakeTransport) on(method, path, body string) *fakeTransport {
	key := method + " " + path
	f.replies[key] = append(f.replies[key], reply{body: body})
	return f
}

func (f *fakeTransport) fail(method, path string, status int, body string) *fakeTransport {
	key := method + " " + path
	err := &api.TransportError{Method: method, Path: path, Status: status, Body: []byte(body)}
	f.replies[key] = append(f.replies[key], reply{err: err})
	return f
}

func (f *fakeTransport) Request(_ context.Context, method, path string, body any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := call{Method: method, Path: path}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			f.t.Fatalf("marshal request body: %v", err)
		}
		c.Body = string(data)
	}
	f.calls = append(f.calls, c)

	key := method + " " + strings.SplitN(path, "?", 2)[0]
	queue := f.replies[key]
	if len(queue) == 0 {
		return nil, &api.TransportError{Method: method, Path: path, Status: http.StatusNotFound,
			Body: []byte(fmt.Sprintf(`{"object":"error","message":"no script for %s"}`, key))}
	}
	r := queue[0]
	if len(queue) > 1 {
		f.replies[key] = queue[1:]
	}
	if r.err != nil {
		return nil, r.err
	}
	return json.RawMessage(r.body), nil
}

// sent returns the calls with the given method.
func (f *fakeTransport) sent(method string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func listOf(hasMore bool, cursor string, results ...string) string {
	next := "null"
	if cursor != "" {
		next = `"` + cursor + `"`
	}
	return fmt.Sprintf(`{"object":"list","results":[%s],"has_more":%t,"next_cursor":%s}`,
		strings.Join(results, ","), hasMore, next)
}
