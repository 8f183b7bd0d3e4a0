package database

import (
	"fmt"
)

// Tx is the transactional information between two parties. The core treats
// every field as opaque and never interprets their contents.
type Tx struct {
	Data      []byte `json:"data"`
	Recipient string `json:"recipient"`
	Sender    string `json:"sender"`
}

// NewTx constructs a new transaction.
func NewTx(sender string, recipient string, data []byte) Tx {
	return Tx{
		Data:      data,
		Recipient: recipient,
		Sender:    sender,
	}
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%d", tx.Sender, tx.Recipient, len(tx.Data))
}

// copyTxs returns a copy of the transactions that is never nil, so an empty
// set always serializes as an empty array.
func copyTxs(txs []Tx) []Tx {
	cp := make([]Tx, len(txs))
	copy(cp, txs)
	return cp
}
