package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/solwallet/solwallet/internal/log"
	"github.com/solwallet/solwallet/pkg/types"
)

// ErrClosed is returned by calls on a closed WebSocket client.
var ErrClosed = errors.New("websocket client closed")

const (
	wsHandshakeTimeout = 10 * time.Second
	wsReadLimit        = 1 << 20
	wsWriteTimeout     = 10 * time.Second
	// NotificationBuffer is the per-subscription channel capacity. When a
	// consumer falls behind, further notifications are dropped.
	NotificationBuffer = 16
)

// AccountNotification reports a change to a subscribed account.
type AccountNotification struct {
	Slot    uint64
	Account *AccountInfo
}

type wsMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uint64         `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

type wsReply struct {
	result json.RawMessage
	err    error
}

type pendingCall struct {
	reply chan wsReply
	// sub is registered under the server's subscription id as soon as the
	// reply arrives, before any notification for it can be read.
	sub *AccountSubscription
}

// WSClient multiplexes JSON-RPC subscriptions over one WebSocket. Request
// ids are per-client and pending calls live on the client.
type WSClient struct {
	conn   *websocket.Conn
	logger zerolog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]*pendingCall
	subs    map[uint64]*AccountSubscription
	closed  bool
	err     error

	done chan struct{}
}

// DialWS connects to a node's WebSocket endpoint.
func DialWS(ctx context.Context, url string) (*WSClient, error) {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = wsHandshakeTimeout
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	conn.SetReadLimit(wsReadLimit)

	ws := &WSClient{
		conn:    conn,
		logger:  log.RPC.With().Str("ws", url).Logger(),
		pending: make(map[uint64]*pendingCall),
		subs:    make(map[uint64]*AccountSubscription),
		done:    make(chan struct{}),
	}
	go ws.readLoop()
	return ws, nil
}

// Done is closed when the connection ends.
func (ws *WSClient) Done() <-chan struct{} { return ws.done }

// Err returns the error that ended the connection, if any.
func (ws *WSClient) Err() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.err
}

// Close ends the connection and every subscription channel.
func (ws *WSClient) Close() error {
	ws.mu.Lock()
	if ws.closed {
		ws.mu.Unlock()
		return nil
	}
	ws.closed = true
	ws.mu.Unlock()

	ws.writeMu.Lock()
	_ = ws.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	ws.writeMu.Unlock()

	err := ws.conn.Close()
	<-ws.done
	return err
}

func (ws *WSClient) call(ctx context.Context, method string, params interface{}, sub *AccountSubscription) (json.RawMessage, error) {
	ws.mu.Lock()
	if ws.closed {
		ws.mu.Unlock()
		return nil, ErrClosed
	}
	ws.nextID++
	id := ws.nextID
	pc := &pendingCall{reply: make(chan wsReply, 1), sub: sub}
	ws.pending[id] = pc
	ws.mu.Unlock()

	msg := struct {
		JSONRPC string      `json:"jsonrpc"`
		ID      uint64      `json:"id"`
		Method  string      `json:"method"`
		Params  interface{} `json:"params"`
	}{"2.0", id, method, params}

	ws.writeMu.Lock()
	_ = ws.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	err := ws.conn.WriteJSON(msg)
	ws.writeMu.Unlock()
	if err != nil {
		ws.dropPending(id)
		return nil, fmt.Errorf("%s: write: %w", method, err)
	}

	select {
	case r := <-pc.reply:
		if r.err != nil {
			return nil, fmt.Errorf("%s: %w", method, r.err)
		}
		return r.result, nil
	case <-ctx.Done():
		ws.dropPending(id)
		return nil, ctx.Err()
	case <-ws.done:
		return nil, ErrClosed
	}
}

func (ws *WSClient) dropPending(id uint64) {
	ws.mu.Lock()
	delete(ws.pending, id)
	ws.mu.Unlock()
}

// AccountSubscription streams notifications for one account.
type AccountSubscription struct {
	// C receives notifications. It is closed on Unsubscribe or when the
	// connection ends.
	C <-chan AccountNotification

	ch      chan AccountNotification
	ws      *WSClient
	account types.PublicKey
	id      uint64
	once    sync.Once
}

func (s *AccountSubscription) close() {
	s.once.Do(func() { close(s.ch) })
}

// AccountSubscribe subscribes to changes of pub at the given commitment.
func (ws *WSClient) AccountSubscribe(ctx context.Context, pub types.PublicKey, commitment string) (*AccountSubscription, error) {
	if commitment == "" {
		commitment = CommitmentConfirmed
	}
	ch := make(chan AccountNotification, NotificationBuffer)
	sub := &AccountSubscription{C: ch, ch: ch, ws: ws, account: pub}

	params := []interface{}{pub.String(), map[string]interface{}{
		"encoding":   "base64",
		"commitment": commitment,
	}}
	if _, err := ws.call(ctx, "accountSubscribe", params, sub); err != nil {
		return nil, err
	}
	ws.logger.Debug().Str("account", pub.String()).Uint64("sub", sub.id).Msg("Account subscribed")
	return sub, nil
}

// Unsubscribe cancels the subscription and closes C.
func (s *AccountSubscription) Unsubscribe(ctx context.Context) error {
	ws := s.ws
	ws.mu.Lock()
	_, ok := ws.subs[s.id]
	delete(ws.subs, s.id)
	ws.mu.Unlock()
	s.close()
	if !ok {
		return nil
	}

	res, err := ws.call(ctx, "accountUnsubscribe", []interface{}{s.id}, nil)
	if err != nil {
		return err
	}
	var accepted bool
	if err := json.Unmarshal(res, &accepted); err != nil || !accepted {
		return fmt.Errorf("accountUnsubscribe %d rejected", s.id)
	}
	return nil
}

type accountNotificationParams struct {
	Subscription uint64 `json:"subscription"`
	Result       struct {
		Context rpcContext  `json:"context"`
		Value   accountJSON `json:"value"`
	} `json:"result"`
}

func (ws *WSClient) readLoop() {
	var readErr error
	defer func() {
		ws.mu.Lock()
		if !ws.closed && !websocket.IsCloseError(readErr, websocket.CloseNormalClosure) {
			ws.err = readErr
		}
		ws.closed = true
		for id, pc := range ws.pending {
			pc.reply <- wsReply{err: ErrClosed}
			delete(ws.pending, id)
		}
		for id, s := range ws.subs {
			s.close()
			delete(ws.subs, id)
		}
		ws.mu.Unlock()
		_ = ws.conn.Close()
		close(ws.done)
	}()

	for {
		_, data, err := ws.conn.ReadMessage()
		if err != nil {
			readErr = err
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			ws.logger.Warn().Err(err).Msg("Undecodable websocket message")
			continue
		}
		if msg.ID != nil {
			ws.handleReply(*msg.ID, &msg)
			continue
		}
		if msg.Method == "accountNotification" {
			ws.handleAccountNotification(msg.Params)
		}
	}
}

func (ws *WSClient) handleReply(id uint64, msg *wsMessage) {
	ws.mu.Lock()
	pc, ok := ws.pending[id]
	delete(ws.pending, id)
	if !ok {
		ws.mu.Unlock()
		return
	}
	if msg.Error != nil {
		ws.mu.Unlock()
		pc.reply <- wsReply{err: msg.Error}
		return
	}
	if pc.sub != nil {
		var subID uint64
		if err := json.Unmarshal(msg.Result, &subID); err != nil {
			ws.mu.Unlock()
			pc.reply <- wsReply{err: fmt.Errorf("decode subscription id: %w", err)}
			return
		}
		pc.sub.id = subID
		ws.subs[subID] = pc.sub
	}
	ws.mu.Unlock()
	pc.reply <- wsReply{result: msg.Result}
}

func (ws *WSClient) handleAccountNotification(raw json.RawMessage) {
	var p accountNotificationParams
	if err := json.Unmarshal(raw, &p); err != nil {
		ws.logger.Warn().Err(err).Msg("Bad account notification")
		return
	}
	info, err := p.Result.Value.decode()
	if err != nil {
		ws.logger.Warn().Err(err).Uint64("sub", p.Subscription).Msg("Bad account data")
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	sub, ok := ws.subs[p.Subscription]
	if !ok {
		return
	}
	select {
	case sub.ch <- AccountNotification{Slot: p.Result.Context.Slot, Account: info}:
	default:
		ws.logger.Warn().Str("account", sub.account.String()).Uint64("slot", p.Result.Context.Slot).
			Msg("Subscriber behind, notification dropped")
	}
}
