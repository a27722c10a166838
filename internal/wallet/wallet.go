// Package wallet defines the signing capability the client is handed. No
// component reaches for a global provider.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// ErrNotConnected is returned by operations that need a connected wallet.
var ErrNotConnected = errors.New("wallet not connected")

// ConnectionEvent is delivered to handlers on connect and disconnect.
type ConnectionEvent struct {
	Connected bool
	PublicKey solana.PublicKey
}

// Wallet is an injected signer.
type Wallet interface {
	Connect(ctx context.Context) (solana.PublicKey, error)
	Disconnect(ctx context.Context) error
	PublicKey() (solana.PublicKey, bool)
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
	OnConnectionChange(handler func(ConnectionEvent)) (unsubscribe func())
}

// KeypairWallet signs with a local ed25519 key, loaded from a Solana keygen
// JSON file on Connect when constructed with NewKeygenFileWallet.
type KeypairWallet struct {
	path string

	mu        sync.RWMutex
	key       solana.PrivateKey
	connected bool

	listenersMu sync.Mutex
	listeners   map[int]func(ConnectionEvent)
	nextID      int
}

// NewKeygenFileWallet reads its key from path on Connect.
func NewKeygenFileWallet(path string) *KeypairWallet {
	return &KeypairWallet{path: path, listeners: make(map[int]func(ConnectionEvent))}
}

// NewKeypairWallet wraps an in-memory key.
func NewKeypairWallet(key solana.PrivateKey) *KeypairWallet {
	return &KeypairWallet{key: key, listeners: make(map[int]func(ConnectionEvent))}
}

func (w *KeypairWallet) Connect(ctx context.Context) (solana.PublicKey, error) {
	if err := ctx.Err(); err != nil {
		return solana.PublicKey{}, err
	}

	w.mu.Lock()
	if w.connected {
		pk := w.key.PublicKey()
		w.mu.Unlock()
		return pk, nil
	}
	if len(w.key) == 0 {
		if w.path == "" {
			w.mu.Unlock()
			return solana.PublicKey{}, fmt.Errorf("keypair is required")
		}
		key, err := solana.PrivateKeyFromSolanaKeygenFile(w.path)
		if err != nil {
			w.mu.Unlock()
			return solana.PublicKey{}, fmt.Errorf("load keypair %s: %w", w.path, err)
		}
		w.key = key
	}
	w.connected = true
	pk := w.key.PublicKey()
	w.mu.Unlock()

	w.notify(ConnectionEvent{Connected: true, PublicKey: pk})
	return pk, nil
}

func (w *KeypairWallet) Disconnect(context.Context) error {
	w.mu.Lock()
	if !w.connected {
		w.mu.Unlock()
		return nil
	}
	w.connected = false
	if w.path != "" {
		w.key = nil
	}
	w.mu.Unlock()

	w.notify(ConnectionEvent{Connected: false})
	return nil
}

func (w *KeypairWallet) PublicKey() (solana.PublicKey, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.connected {
		return solana.PublicKey{}, false
	}
	return w.key.PublicKey(), true
}

// SignTransaction adds this wallet's signature to tx in place.
func (w *KeypairWallet) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.connected {
		return nil, ErrNotConnected
	}

	key := w.key
	pub := key.PublicKey()
	if _, err := tx.Sign(func(signer solana.PublicKey) *solana.PrivateKey {
		if signer.Equals(pub) {
			return &key
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return tx, nil
}

func (w *KeypairWallet) OnConnectionChange(handler func(ConnectionEvent)) func() {
	w.listenersMu.Lock()
	defer w.listenersMu.Unlock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			w.listenersMu.Lock()
			delete(w.listeners, id)
			w.listenersMu.Unlock()
		})
	}
}

func (w *KeypairWallet) notify(ev ConnectionEvent) {
	w.listenersMu.Lock()
	handlers := make([]func(ConnectionEvent), 0, len(w.listeners))
	for _, h := range w.listeners {
		handlers = append(handlers, h)
	}
	w.listenersMu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
