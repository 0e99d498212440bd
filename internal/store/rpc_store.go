package store

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/0xtechnoir/ore-alt-client/internal/game"
	"github.com/0xtechnoir/ore-alt-client/internal/solana"
)

// RPCStore reads accounts through a Solana RPC client.
type RPCStore struct {
	rpc solana.RPCClient
}

// NewRPCStore creates an AccountStore backed by the given RPC client.
func NewRPCStore(rpc solana.RPCClient) *RPCStore {
	return &RPCStore{rpc: rpc}
}

// Fetch retrieves and base64-decodes the account data at addr.
func (s *RPCStore) Fetch(ctx context.Context, addr game.Pubkey) ([]byte, error) {
	info, err := s.rpc.GetAccountInfo(ctx, addr.String())
	if err != nil {
		return nil, fmt.Errorf("get account info: %w", err)
	}
	if info == nil {
		return nil, ErrNotFound
	}
	if info.Data == "" {
		return []byte{}, nil
	}

	raw, err := base64.StdEncoding.DecodeString(info.Data)
	if err != nil {
		return nil, fmt.Errorf("decode account data: %w", err)
	}
	return raw, nil
}
