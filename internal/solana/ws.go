package solana

import "context"

// WSClient defines the Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeAccount subscribes to changes of a single account.
	SubscribeAccount(ctx context.Context, pubkey string) (<-chan AccountNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// AccountNotification is delivered whenever a subscribed account changes.
type AccountNotification struct {
	Pubkey   string
	Slot     int64
	Lamports uint64
	Data     string // base64 encoded account data
}
