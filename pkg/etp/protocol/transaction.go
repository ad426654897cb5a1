package protocol

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/correlator"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/message"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
	"github.com/geosiris-technologies/etp-go-client/pkg/etp/uri"
)

// ErrTransactionAlreadyActive is returned by StartTransaction when the
// session already has one open; a session may hold at most one active
// transaction at a time, and this is enforced client-side without a round
// trip to the store.
var ErrTransactionAlreadyActive = errors.New("etp: a transaction is already active on this session")

// ErrNoActiveTransaction is returned by CommitTransaction/RollbackTransaction
// when called with no transaction open.
var ErrNoActiveTransaction = errors.New("etp: no transaction is active on this session")

type Transaction struct {
	c *correlator.Correlator

	mu       sync.Mutex
	activeID string
}

func NewTransaction(c *correlator.Correlator) *Transaction {
	return &Transaction{c: c}
}

func transactionDiscriminant(t int32) message.Discriminant {
	return message.Discriminant{Protocol: types.ProtocolTransaction, MessageType: t}
}

func (t *Transaction) Start(ctx context.Context, dataspaceURIs []string, readOnly bool, msg string, timeout time.Duration) (*types.StartTransactionResponse, error) {
	t.mu.Lock()
	if t.activeID != "" {
		t.mu.Unlock()
		return nil, ErrTransactionAlreadyActive
	}
	t.mu.Unlock()

	req := types.StartTransaction{
		DataspaceURIs: uri.NormalizeList(dataspaceURIs),
		ReadOnly:      readOnly,
		Message:       msg,
	}
	items, err := t.c.SendAndWait(ctx, transactionDiscriminant(types.MsgStartTransaction), req, timeout)
	if err != nil {
		return nil, err
	}

	var resp *types.StartTransactionResponse
	for _, item := range items {
		if r, ok := item.Body.(*types.StartTransactionResponse); ok {
			resp = r
		}
	}
	if resp != nil && resp.Successful {
		t.mu.Lock()
		t.activeID = resp.TransactionUUID
		t.mu.Unlock()
	}
	return resp, nil
}

func (t *Transaction) Commit(ctx context.Context, timeout time.Duration) (*types.CommitTransactionResponse, error) {
	t.mu.Lock()
	id := t.activeID
	t.mu.Unlock()
	if id == "" {
		return nil, ErrNoActiveTransaction
	}

	items, err := t.c.SendAndWait(ctx, transactionDiscriminant(types.MsgCommitTransaction), types.CommitTransaction{TransactionUUID: id}, timeout)
	if err != nil {
		return nil, err
	}
	t.clearIfMatches(id)

	for _, item := range items {
		if r, ok := item.Body.(*types.CommitTransactionResponse); ok {
			return r, nil
		}
	}
	return nil, nil
}

func (t *Transaction) Rollback(ctx context.Context, timeout time.Duration) (*types.RollbackTransactionResponse, error) {
	t.mu.Lock()
	id := t.activeID
	t.mu.Unlock()
	if id == "" {
		return nil, ErrNoActiveTransaction
	}

	items, err := t.c.SendAndWait(ctx, transactionDiscriminant(types.MsgRollbackTransaction), types.RollbackTransaction{TransactionUUID: id}, timeout)
	if err != nil {
		return nil, err
	}
	t.clearIfMatches(id)

	for _, item := range items {
		if r, ok := item.Body.(*types.RollbackTransactionResponse); ok {
			return r, nil
		}
	}
	return nil, nil
}

func (t *Transaction) clearIfMatches(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.activeID == id {
		t.activeID = ""
	}
}

// Active reports the current transaction uuid, or "" if none is open.
func (t *Transaction) Active() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeID
}
