package fhevm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeNode is a minimal JSON-RPC node over HTTP.
type fakeNode struct {
	mu       sync.Mutex
	results  map[string]any
	calls    map[string]int
	hangOn   map[string]chan struct{}
	srv      *httptest.Server
	rpcError map[string]string
}

func newFakeNode(t *testing.T, results map[string]any) *fakeNode {
	t.Helper()
	n := &fakeNode{
		results:  results,
		calls:    map[string]int{},
		hangOn:   map[string]chan struct{}{},
		rpcError: map[string]string{},
	}
	n.srv = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.srv.Close)
	return n
}

func (n *fakeNode) URL() string { return n.srv.URL }

func (n *fakeNode) Calls(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls[req.Method]++
	res, ok := n.results[req.Method]
	hang := n.hangOn[req.Method]
	rpcErr := n.rpcError[req.Method]
	n.mu.Unlock()

	if hang != nil {
		select {
		case <-hang:
		case <-r.Context().Done():
			return
		}
	}

	out := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	switch {
	case rpcErr != "":
		out["error"] = map[string]any{"code": -32000, "message": rpcErr}
	case !ok:
		out["error"] = map[string]any{"code": -32601, "message": "the method " + req.Method + " does not exist/is not available"}
	default:
		out["result"] = res
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
