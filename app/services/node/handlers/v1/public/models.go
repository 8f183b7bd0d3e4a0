package public

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

type newPeer struct {
	Host string `json:"host" validate:"required"`
}

type newTx struct {
	Sender    string `json:"sender" validate:"required"`
	Recipient string `json:"recipient" validate:"required"`
	Data      []byte `json:"data"`
}

type newBlock struct {
	PreviousHash string `json:"previous_hash"`
	Nonce        string `json:"nonce"`
}

type mineRequest struct {
	Index      *uint64 `json:"index"`
	Difficulty *uint   `json:"difficulty" validate:"omitempty,max=64"`
}

type tx struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Data      []byte `json:"data"`
}

type block struct {
	Index        uint64 `json:"index"`
	Timestamp    string `json:"timestamp"`
	Transactions []tx   `json:"transactions"`
	PreviousHash string `json:"previous_hash,omitempty"`
	Nonce        string `json:"nonce,omitempty"`
	Hash         string `json:"hash"`
}

func toTxs(dbTxs []database.Tx) []tx {
	trans := make([]tx, len(dbTxs))
	for i, tran := range dbTxs {
		trans[i] = tx{
			Sender:    tran.Sender,
			Recipient: tran.Recipient,
			Data:      tran.Data,
		}
	}

	return trans
}

func toBlock(blk database.Block) block {
	return block{
		Index:        blk.Index,
		Timestamp:    blk.Timestamp.UTC().Format(database.TimestampLayout),
		Transactions: toTxs(blk.Transactions),
		PreviousHash: blk.PreviousHash,
		Nonce:        blk.Nonce,
		Hash:         blk.Hash,
	}
}

func toBlocks(dbBlocks []database.Block) []block {
	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = toBlock(blk)
	}

	return blocks
}
