package rpcclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	klog "github.com/solwallet/solwallet/internal/log"
	"github.com/solwallet/solwallet/pkg/types"
)

// wsNode is a minimal subscription server: accountSubscribe replies with
// subscription id 77 and immediately pushes notify notifications.
type wsNode struct {
	t      *testing.T
	notify int
	unsubs chan uint64
}

func (n *wsNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		n.t.Errorf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req struct {
			ID     uint64            `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		switch req.Method {
		case "accountSubscribe":
			_ = conn.WriteJSON(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": 77})
			for i := 0; i < n.notify; i++ {
				_ = conn.WriteJSON(map[string]interface{}{
					"jsonrpc": "2.0",
					"method":  "accountNotification",
					"params": map[string]interface{}{
						"subscription": 77,
						"result": map[string]interface{}{
							"context": map[string]interface{}{"slot": 100 + i},
							"value": map[string]interface{}{
								"lamports":   1000 * (i + 1),
								"owner":      "11111111111111111111111111111111",
								"data":       []string{base64.StdEncoding.EncodeToString(nil), "base64"},
								"executable": false,
								"rentEpoch":  0,
							},
						},
					},
				})
			}
		case "accountUnsubscribe":
			var id uint64
			_ = json.Unmarshal(req.Params[0], &id)
			n.unsubs <- id
			_ = conn.WriteJSON(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": true})
		default:
			_ = conn.WriteJSON(map[string]interface{}{
				"jsonrpc": "2.0", "id": req.ID,
				"error": map[string]interface{}{"code": -32601, "message": "Method not found"},
			})
		}
	}
}

func dialTestWS(t *testing.T, node *wsNode) *WSClient {
	t.Helper()
	klog.Init("error", false, "")
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ws, err := DialWS(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatalf("DialWS() error: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestAccountSubscribe(t *testing.T) {
	node := &wsNode{t: t, notify: 2, unsubs: make(chan uint64, 1)}
	ws := dialTestWS(t, node)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sub, err := ws.AccountSubscribe(ctx, types.PublicKey{1}, "")
	if err != nil {
		t.Fatalf("AccountSubscribe() error: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case n, ok := <-sub.C:
			if !ok {
				t.Fatal("subscription channel closed early")
			}
			if n.Slot != uint64(100+i) || n.Account.Lamports != uint64(1000*(i+1)) {
				t.Errorf("notification %d = slot %d lamports %d", i, n.Slot, n.Account.Lamports)
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for notification")
		}
	}

	if err := sub.Unsubscribe(ctx); err != nil {
		t.Fatalf("Unsubscribe() error: %v", err)
	}
	if id := <-node.unsubs; id != 77 {
		t.Errorf("unsubscribed id %d, want 77", id)
	}
	if _, ok := <-sub.C; ok {
		t.Error("channel still open after Unsubscribe")
	}
}

func TestWSClient_RPCError(t *testing.T) {
	ws := dialTestWS(t, &wsNode{t: t})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := ws.call(ctx, "slotSubscribe", nil, nil)
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Code != -32601 {
		t.Errorf("call() error = %v, want RPC -32601", err)
	}
}

func TestWSClient_Close(t *testing.T) {
	node := &wsNode{t: t}
	ws := dialTestWS(t, node)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub, err := ws.AccountSubscribe(ctx, types.PublicKey{2}, CommitmentFinalized)
	if err != nil {
		t.Fatalf("AccountSubscribe() error: %v", err)
	}
	if err := ws.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	select {
	case <-ws.Done():
	case <-ctx.Done():
		t.Fatal("Done() not closed")
	}
	if _, ok := <-sub.C; ok {
		t.Error("subscription channel open after Close")
	}
	if ws.Err() != nil {
		t.Errorf("Err() = %v after clean close", ws.Err())
	}
	if _, err := ws.AccountSubscribe(ctx, types.PublicKey{3}, ""); !errors.Is(err, ErrClosed) {
		t.Errorf("AccountSubscribe() after Close error = %v, want ErrClosed", err)
	}
}
