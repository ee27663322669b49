package listener

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/lib/pq"
)

const (
	channelName       = "ledger_changed"
	reconnectInterval = 5 * time.Second
)

// LedgerNotification is the payload from PostgreSQL NOTIFY when ledger rows
// change (trigger-installed on ledger_entries).
type LedgerNotification struct {
	AccountID string `json:"account_id"`
	ItemID    string `json:"item_id"`
}

// Regenerator is the slice of the cycle engine the listener needs.
type Regenerator interface {
	RegenerateAccount(ctx context.Context, accountID string) error
}

// LedgerListener listens for PostgreSQL notifications about ledger changes
// and triggers cycle regeneration for the affected account, so out-of-band
// writes (migrations, manual SQL fixes) still produce fresh cycles.
type LedgerListener struct {
	connStr     string
	regenerator Regenerator
	shutdownCh  chan struct{}
	done        chan struct{}
}

// NewLedgerListener creates a new listener for ledger change notifications
func NewLedgerListener(connStr string, regenerator Regenerator) *LedgerListener {
	return &LedgerListener{
		connStr:     connStr,
		regenerator: regenerator,
		shutdownCh:  make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start begins listening for notifications in a background goroutine
func (l *LedgerListener) Start(ctx context.Context) {
	go l.listen(ctx)
	log.Println("Ledger notification listener started")
}

// Stop gracefully shuts down the listener
func (l *LedgerListener) Stop() {
	close(l.shutdownCh)
	<-l.done
	log.Println("Ledger notification listener stopped")
}

func (l *LedgerListener) listen(ctx context.Context) {
	defer close(l.done)

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		default:
			l.connectAndListen(ctx)
		}

		// Wait before reconnecting
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case <-time.After(reconnectInterval):
			log.Println("Reconnecting to PostgreSQL for notifications...")
		}
	}
}

func (l *LedgerListener) connectAndListen(ctx context.Context) {
	listener := pq.NewListener(l.connStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("Listener error: %v", err)
		}
		switch ev {
		case pq.ListenerEventConnected:
			log.Println("Connected to PostgreSQL notification channel")
		case pq.ListenerEventDisconnected:
			log.Println("Disconnected from PostgreSQL notification channel")
		case pq.ListenerEventReconnected:
			log.Println("Reconnected to PostgreSQL notification channel")
		case pq.ListenerEventConnectionAttemptFailed:
			log.Printf("Connection attempt failed: %v", err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(channelName); err != nil {
		log.Printf("Failed to listen on channel %s: %v", channelName, err)
		return
	}

	log.Printf("Listening on channel: %s", channelName)

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case notification := <-listener.Notify:
			if notification == nil {
				// Connection lost, break to reconnect
				return
			}
			l.handleNotification(notification)
		case <-time.After(90 * time.Second):
			// Ping to keep connection alive
			go func() {
				if err := listener.Ping(); err != nil {
					log.Printf("Listener ping failed: %v", err)
				}
			}()
		}
	}
}

func (l *LedgerListener) handleNotification(notification *pq.Notification) {
	var payload LedgerNotification
	if err := json.Unmarshal([]byte(notification.Extra), &payload); err != nil {
		log.Printf("Failed to parse notification payload: %v", err)
		return
	}
	if payload.AccountID == "" {
		return
	}

	// Use background context since parent ctx may be cancelled during shutdown
	go func() {
		if err := l.regenerator.RegenerateAccount(context.Background(), payload.AccountID); err != nil {
			log.Printf("Failed to regenerate cycles for account %s: %v", payload.AccountID, err)
		}
	}()
}
