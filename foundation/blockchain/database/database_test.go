package database_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

var fixed = time.Date(2024, time.January, 2, 3, 4, 5, 678_000_000, time.UTC)

// =============================================================================

func Test_Genesis(t *testing.T) {
	t.Log("Given the need to construct a new chain.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen using a fixed clock.", testID)
		{
			chain := database.New(database.Config{Clock: database.FixedClock(fixed)})

			if chain.Length() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould have exactly one block, got %d.", failed, testID, chain.Length())
			}
			t.Logf("\t%s\tTest %d:\tShould have exactly one block.", success, testID)

			genesis, exists := chain.LastBlock()
			if !exists {
				t.Fatalf("\t%s\tTest %d:\tShould be able to retrieve the last block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to retrieve the last block.", success, testID)

			if genesis.Index != 0 || len(genesis.Transactions) != 0 || genesis.PreviousHash != "" || genesis.Nonce != "" {
				t.Fatalf("\t%s\tTest %d:\tShould have an empty genesis block: %+v", failed, testID, genesis)
			}
			t.Logf("\t%s\tTest %d:\tShould have an empty genesis block.", success, testID)

			const canonical = `{"index":0,"nonce":null,"timestamp":"2024-01-02T03:04:05.678Z","transactions":[]}`
			data, err := genesis.Canonical()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to produce the canonical text: %v", failed, testID, err)
			}
			if string(data) != canonical {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, data)
				t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, canonical)
				t.Fatalf("\t%s\tTest %d:\tShould produce the canonical text.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould produce the canonical text.", success, testID)

			const hash = "0d3e38fc3202b206110d290029a65b9c368e95e1d41d98bc03c13053d0059640"
			if genesis.Hash != hash {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, genesis.Hash)
				t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, hash)
				t.Fatalf("\t%s\tTest %d:\tShould seal genesis with the known hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould seal genesis with the known hash.", success, testID)
		}
	}
}

func Test_GenesisClock(t *testing.T) {
	a := database.New(database.Config{Clock: database.FixedClock(fixed)})
	b := database.New(database.Config{Clock: database.FixedClock(fixed)})
	c := database.New(database.Config{Clock: database.FixedClock(fixed.Add(time.Millisecond))})

	ga, _ := a.LastBlock()
	gb, _ := b.LastBlock()
	gc, _ := c.LastBlock()

	if ga.Hash != gb.Hash {
		t.Fatalf("\t%s\tShould get identical genesis hashes for identical timestamps.", failed)
	}
	t.Logf("\t%s\tShould get identical genesis hashes for identical timestamps.", success)

	if ga.Hash == gc.Hash {
		t.Fatalf("\t%s\tShould get different genesis hashes for different timestamps.", failed)
	}
	t.Logf("\t%s\tShould get different genesis hashes for different timestamps.", success)
}

func Test_NewBlock(t *testing.T) {
	type table struct {
		name  string
		prev  string
		nonce string
		txs   []database.Tx
		hash  string
	}

	tt := []table{
		{
			name:  "one-tx",
			prev:  "ff",
			nonce: "abc",
			txs:   []database.Tx{database.NewTx("alice", "bob", []byte("hi"))},
			hash:  "083f138736e73b28b366744636f3ad02400925d33770c006a4b16c73381c517e",
		},
		{
			name: "many-tx",
			txs: []database.Tx{
				database.NewTx("alice", "bob", []byte("1")),
				database.NewTx("bob", "carol", []byte("2")),
				database.NewTx("carol", "alice", nil),
			},
		},
		{
			name: "no-tx",
		},
	}

	t.Log("Given the need to seal pending transactions into a block.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				var events []string
				ev := func(v string, args ...any) {
					events = append(events, v)
				}

				chain := database.New(database.Config{Clock: database.FixedClock(fixed), EvHandler: ev})
				for _, tx := range tst.txs {
					chain.SubmitTx(tx)
				}

				before := chain.Pending()
				blk := chain.NewBlock(tst.prev, tst.nonce)

				if blk.Index != 1 || chain.Length() != 2 {
					t.Fatalf("\t%s\tTest %d:\tShould append the block at index 1, got %d.", failed, testID, blk.Index)
				}
				t.Logf("\t%s\tTest %d:\tShould append the block at index 1.", success, testID)

				if len(chain.Pending()) != 0 {
					t.Fatalf("\t%s\tTest %d:\tShould drain the pending buffer.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould drain the pending buffer.", success, testID)

				if len(blk.Transactions) != len(before) {
					t.Fatalf("\t%s\tTest %d:\tShould move %d transactions, got %d.", failed, testID, len(before), len(blk.Transactions))
				}
				for i := range before {
					if blk.Transactions[i].String() != before[i].String() {
						t.Fatalf("\t%s\tTest %d:\tShould keep transaction order at %d.", failed, testID, i)
					}
				}
				t.Logf("\t%s\tTest %d:\tShould move the transactions in order.", success, testID)

				if blk.PreviousHash != tst.prev || blk.Nonce != tst.nonce {
					t.Fatalf("\t%s\tTest %d:\tShould record the previous hash and nonce as given.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould record the previous hash and nonce as given.", success, testID)

				if err := blk.Verify(); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould carry the digest of its content: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould carry the digest of its content.", success, testID)

				if tst.hash != "" && blk.Hash != tst.hash {
					t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, blk.Hash)
					t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.hash)
					t.Fatalf("\t%s\tTest %d:\tShould seal with the known hash.", failed, testID)
				}

				if len(events) != 2 {
					t.Fatalf("\t%s\tTest %d:\tShould emit a creation event per block, got %d.", failed, testID, len(events))
				}
				t.Logf("\t%s\tTest %d:\tShould emit a creation event per block.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Digest(t *testing.T) {
	blk := database.Block{
		Index:        3,
		Timestamp:    fixed,
		Transactions: []database.Tx{database.NewTx("a", "b", []byte("c"))},
		PreviousHash: "prev",
	}

	h1 := blk.Digest()
	if h1 != blk.Digest() {
		t.Fatalf("\t%s\tShould get the same digest twice.", failed)
	}
	t.Logf("\t%s\tShould get the same digest twice.", success)

	blk.Seal()
	if blk.Digest() != h1 {
		t.Fatalf("\t%s\tShould not let the recorded hash feed the digest.", failed)
	}
	t.Logf("\t%s\tShould not let the recorded hash feed the digest.", success)

	changes := []func(b *database.Block){
		func(b *database.Block) { b.Index++ },
		func(b *database.Block) { b.Nonce = "n" },
		func(b *database.Block) { b.PreviousHash = "other" },
		func(b *database.Block) { b.Timestamp = b.Timestamp.Add(time.Millisecond) },
		func(b *database.Block) { b.Transactions = append(b.Transactions, database.NewTx("a", "b", nil)) },
	}

	for i, change := range changes {
		cp := blk.Copy()
		change(&cp)
		if cp.Digest() == h1 {
			t.Fatalf("\t%s\tShould get a different digest for change %d.", failed, i)
		}
	}
	t.Logf("\t%s\tShould get a different digest for every field change.", success)

	cp := blk.Copy()
	cp.Transactions[0] = database.NewTx("x", "y", []byte("z"))
	if cp.Digest() != h1 {
		t.Fatalf("\t%s\tShould hash every transaction by position only.", failed)
	}
	t.Logf("\t%s\tShould hash every transaction by position only.", success)

	const canonical = `{"index":3,"nonce":null,"previousHash":"prev","timestamp":"2024-01-02T03:04:05.678Z","transactions":[{}]}`
	data, err := blk.Canonical()
	if err != nil || string(data) != canonical {
		t.Fatalf("\t%s\tShould encode transactions as empty objects, got %s: %v", failed, data, err)
	}
	t.Logf("\t%s\tShould encode transactions as empty objects.", success)
}

func Test_Verify(t *testing.T) {
	chain := database.New(database.Config{Clock: database.FixedClock(fixed)})

	for i := 0; i < 3; i++ {
		last, _ := chain.LastBlock()
		chain.SubmitTx(database.NewTx("alice", "bob", []byte{byte(i)}))
		chain.NewBlock(last.Hash, "")
	}

	if err := chain.Verify(); err != nil {
		t.Fatalf("\t%s\tShould verify a linked chain: %v", failed, err)
	}
	t.Logf("\t%s\tShould verify a linked chain.", success)

	chain.NewBlock("not-the-parent", "")
	if err := chain.Verify(); !errors.Is(err, database.ErrBrokenLink) {
		t.Fatalf("\t%s\tShould detect a broken link, got %v.", failed, err)
	}
	t.Logf("\t%s\tShould detect a broken link.", success)

	chain = database.New(database.Config{Clock: database.FixedClock(fixed)})
	genesis, _ := chain.LastBlock()
	genesis.Nonce = "tampered"
	if err := chain.Verify(); err == nil {
		t.Fatalf("\t%s\tShould detect a block whose content changed after sealing.", failed)
	}
	t.Logf("\t%s\tShould detect a block whose content changed after sealing.", success)
}

func Test_Peers(t *testing.T) {
	chain := database.New(database.Config{})

	chain.AddPeer("host1")
	chain.AddPeer("host2")
	chain.AddPeer("host1")

	peers := chain.Peers()
	if len(peers) != 2 {
		t.Fatalf("\t%s\tShould keep unique peers, got %d.", failed, len(peers))
	}
	t.Logf("\t%s\tShould keep unique peers.", success)
}
