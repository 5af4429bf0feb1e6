// Package watch follows open positions over a WebSocket connection: it
// subscribes to the position storage account and its base vault and
// reports record changes and balance movements as they land.
package watch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/websocket"

	"aquaswap/pkg/swap"
	"aquaswap/pkg/token"
)

// Update is one observed account change.
type Update struct {
	Account solana.PublicKey
	Slot    uint64
	Data    []byte
}

// Handler consumes account updates.
type Handler func(Update)

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcMessage struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Params *struct {
		Subscription uint64 `json:"subscription"`
		Result       struct {
			Context struct {
				Slot uint64 `json:"slot"`
			} `json:"context"`
			Value struct {
				Data []interface{} `json:"data"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// Watcher multiplexes account subscriptions over one WebSocket connection.
type Watcher struct {
	url    string
	conn   *websocket.Conn
	mu     sync.Mutex
	nextID uint64
	// request id -> account awaiting its subscription id
	pending map[uint64]solana.PublicKey
	// handler registered per request, keyed by subscription id once known
	byRequest      map[uint64]Handler
	bySubscription map[uint64]Handler
	accounts       map[uint64]solana.PublicKey
	cancel         context.CancelFunc
}

// New dials the WebSocket endpoint and starts the read loop.
func New(ctx context.Context, wsURL string) (*Watcher, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", wsURL, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		url:            wsURL,
		conn:           conn,
		nextID:         1,
		pending:        make(map[uint64]solana.PublicKey),
		byRequest:      make(map[uint64]Handler),
		bySubscription: make(map[uint64]Handler),
		accounts:       make(map[uint64]solana.PublicKey),
		cancel:         cancel,
	}
	go w.readLoop(watchCtx)
	return w, nil
}

// WatchAccount subscribes to one account's updates.
func (w *Watcher) WatchAccount(account solana.PublicKey, handler Handler) error {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.pending[id] = account
	w.byRequest[id] = handler
	conn := w.conn
	w.mu.Unlock()

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "accountSubscribe",
		Params: []interface{}{
			account.String(),
			map[string]interface{}{
				"encoding":   "base64",
				"commitment": "confirmed",
			},
		},
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("subscribe %s: %w", account, err)
	}
	return nil
}

// Close tears the connection down.
func (w *Watcher) Close() error {
	w.cancel()
	return w.conn.Close()
}

func (w *Watcher) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := w.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("watch: read error: %v", err)
			time.Sleep(time.Second)
			continue
		}
		w.handleMessage(message)
	}
}

func (w *Watcher) handleMessage(message []byte) {
	var msg rpcMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("watch: bad message: %v", err)
		return
	}

	// Subscription confirmation: result carries the subscription id.
	if msg.ID != 0 && msg.Result != nil {
		var subID uint64
		if err := json.Unmarshal(msg.Result, &subID); err != nil {
			return
		}
		w.mu.Lock()
		if account, ok := w.pending[msg.ID]; ok {
			w.bySubscription[subID] = w.byRequest[msg.ID]
			w.accounts[subID] = account
			delete(w.pending, msg.ID)
			delete(w.byRequest, msg.ID)
		}
		w.mu.Unlock()
		return
	}

	if msg.Method != "accountNotification" || msg.Params == nil {
		return
	}

	w.mu.Lock()
	handler := w.bySubscription[msg.Params.Subscription]
	account := w.accounts[msg.Params.Subscription]
	w.mu.Unlock()
	if handler == nil {
		return
	}

	raw, ok := firstString(msg.Params.Result.Value.Data)
	if !ok {
		return
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		log.Printf("watch: bad account data for %s: %v", account, err)
		return
	}

	handler(Update{
		Account: account,
		Slot:    msg.Params.Result.Context.Slot,
		Data:    data,
	})
}

func firstString(data []interface{}) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	s, ok := data[0].(string)
	return s, ok
}

// PositionMonitor tracks one position and its vault balance.
type PositionMonitor struct {
	mu      sync.RWMutex
	record  swap.Position
	loaded  bool
	balance uint64
}

// NewPositionMonitor wires a monitor to a watcher: record updates come
// from the storage account, balance updates from the base vault.
func NewPositionMonitor(w *Watcher, storage, baseVault solana.PublicKey) (*PositionMonitor, error) {
	m := &PositionMonitor{}

	if err := w.WatchAccount(storage, func(u Update) {
		if swap.IsBlank(u.Data) {
			m.mu.Lock()
			m.loaded = false
			m.mu.Unlock()
			log.Printf("position %s closed at slot %d", u.Account, u.Slot)
			return
		}
		var record swap.Position
		if err := record.Decode(u.Data); err != nil {
			log.Printf("position %s: undecodable record: %v", u.Account, err)
			return
		}
		m.mu.Lock()
		m.record = record
		m.loaded = true
		m.mu.Unlock()
	}); err != nil {
		return nil, err
	}

	if err := w.WatchAccount(baseVault, func(u Update) {
		amount, err := token.Amount(u.Data)
		if err != nil {
			log.Printf("vault %s: %v", u.Account, err)
			return
		}
		m.mu.Lock()
		m.balance = amount
		m.mu.Unlock()
		log.Printf("vault %s balance %d at slot %d", u.Account, amount, u.Slot)
	}); err != nil {
		return nil, err
	}

	return m, nil
}

// Record returns the latest decoded record, if one has been observed.
func (m *PositionMonitor) Record() (swap.Position, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.record, m.loaded
}

// VaultBalance returns the latest observed base vault balance.
func (m *PositionMonitor) VaultBalance() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balance
}
