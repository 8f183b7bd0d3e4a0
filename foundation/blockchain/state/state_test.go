package state_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/miner"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/logger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

type recorder struct {
	sealed   int
	mined    int
	attempts uint64
}

func (r *recorder) BlockSealed(block database.Block) {
	r.sealed++
}

func (r *recorder) BlockMined(block database.Block, attempts uint64, duration time.Duration) {
	r.mined++
	r.attempts += attempts
}

// =============================================================================

func Test_SealAndMine(t *testing.T) {
	log, err := logger.New("TEST")
	ifErrFailNow(t, err)
	defer log.Sync()

	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	rec := recorder{}
	st, err := state.New(state.Config{
		Host:       "localhost:9080",
		Difficulty: 1,
		Clock:      database.FixedClock(time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)),
		Recorder:   &rec,
		EvHandler:  ev,
	})
	ifErrFailNow(t, err)
	defer st.Shutdown()

	t.Log("Given the need to seal and mine pending transactions.")
	{
		if _, err := st.SealPending(); !errors.Is(err, state.ErrNoTransactions) {
			t.Fatalf("\t%s\tShould refuse to seal an empty buffer, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould refuse to seal an empty buffer.", success)

		st.SubmitTransaction(database.NewTx("alice", "bob", []byte("1")))
		st.SubmitTransaction(database.NewTx("bob", "carol", []byte("2")))

		if st.QueryPendingLength() != 2 {
			t.Fatalf("\t%s\tShould have two pending transactions, got %d.", failed, st.QueryPendingLength())
		}
		t.Logf("\t%s\tShould have two pending transactions.", success)

		genesis := st.RetrieveLatestBlock()

		blk, err := st.SealPending()
		ifErrFailNow(t, err)

		if blk.Index != 1 || blk.PreviousHash != genesis.Hash || len(blk.Transactions) != 2 {
			t.Fatalf("\t%s\tShould seal a block linked to genesis: %+v", failed, blk)
		}
		t.Logf("\t%s\tShould seal a block linked to genesis.", success)

		if len(st.RetrievePending()) != 0 {
			t.Fatalf("\t%s\tShould drain the pending buffer.", failed)
		}
		t.Logf("\t%s\tShould drain the pending buffer.", success)

		mined, err := st.MineLatest(context.Background(), st.RetrieveDifficulty())
		ifErrFailNow(t, err)

		if !miner.IsAcceptable(mined.Hash, 1) || mined.Index != 1 {
			t.Fatalf("\t%s\tShould mine the latest block: %+v", failed, mined)
		}
		t.Logf("\t%s\tShould mine the latest block.", success)

		if latest := st.RetrieveLatestBlock(); latest.Hash != mined.Hash || latest.Nonce != mined.Nonce {
			t.Fatalf("\t%s\tShould keep the mined values in the chain.", failed)
		}
		t.Logf("\t%s\tShould keep the mined values in the chain.", success)

		ifErrFailNow(t, st.VerifyChain())
		t.Logf("\t%s\tShould still verify the chain.", success)

		if rec.sealed != 2 || rec.mined != 1 || rec.attempts == 0 {
			t.Fatalf("\t%s\tShould record sealed and mined blocks: %+v", failed, rec)
		}
		t.Logf("\t%s\tShould record sealed and mined blocks.", success)
	}
}

func Test_MineBlock(t *testing.T) {
	st, err := state.New(state.Config{})
	ifErrFailNow(t, err)

	if _, err := st.MineBlock(context.Background(), 5, 1); !errors.Is(err, state.ErrBlockNotFound) {
		t.Fatalf("\t%s\tShould fail for a missing block, got %v.", failed, err)
	}
	t.Logf("\t%s\tShould fail for a missing block.", success)

	st.NewBlock("", "")
	blk, err := st.MineBlock(context.Background(), 0, 1)
	ifErrFailNow(t, err)

	if blk.Index != 0 || blk.Hash[0] != '0' {
		t.Fatalf("\t%s\tShould mine a historical block: %+v", failed, blk)
	}
	t.Logf("\t%s\tShould mine a historical block.", success)
}

func Test_QueryBlocks(t *testing.T) {
	st, err := state.New(state.Config{})
	ifErrFailNow(t, err)

	for i := 0; i < 4; i++ {
		st.NewBlock(st.RetrieveLatestBlock().Hash, "")
	}

	type table struct {
		name string
		from uint64
		to   uint64
		exp  int
	}

	tt := []table{
		{name: "all", from: 0, to: state.QueryLatest, exp: 5},
		{name: "latest", from: state.QueryLatest, to: state.QueryLatest, exp: 1},
		{name: "range", from: 1, to: 3, exp: 3},
		{name: "clamped", from: 3, to: 100, exp: 2},
		{name: "past-end", from: 10, to: 20, exp: 0},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			blocks := st.QueryBlocksByNumber(tst.from, tst.to)
			if len(blocks) != tst.exp {
				t.Logf("Test %s:\tgot: %d", tst.name, len(blocks))
				t.Logf("Test %s:\texp: %d", tst.name, tst.exp)
				t.Fatalf("Test %s:\tShould get back the right blocks.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_Peers(t *testing.T) {
	st, err := state.New(state.Config{Host: "self:9080"})
	ifErrFailNow(t, err)

	st.AddKnownPeer("self:9080")
	st.AddKnownPeer("other:9080")

	if st.AddKnownPeer("other:9080") {
		t.Fatalf("\t%s\tShould not add a known peer twice.", failed)
	}

	peers := st.RetrieveKnownPeers()
	if len(peers) != 1 || peers[0].Host != "other:9080" {
		t.Fatalf("\t%s\tShould leave this node out of the known peers: %v", failed, peers)
	}
	t.Logf("\t%s\tShould leave this node out of the known peers.", success)

	status := st.RetrieveStatus()
	if status.LatestBlockIndex != 0 || status.LatestBlockHash == "" {
		t.Fatalf("\t%s\tShould report the latest block: %+v", failed, status)
	}
	t.Logf("\t%s\tShould report the latest block.", success)

	if status.Host != "self:9080" {
		t.Fatalf("\t%s\tShould report this node's host, got %q.", failed, status.Host)
	}
	t.Logf("\t%s\tShould report this node's host.", success)

	if !st.RemoveKnownPeer("other:9080") || len(st.RetrieveKnownPeers()) != 0 {
		t.Fatalf("\t%s\tShould be able to remove a peer.", failed)
	}
	t.Logf("\t%s\tShould be able to remove a peer.", success)

	if st.RemoveKnownPeer("other:9080") {
		t.Fatalf("\t%s\tShould report removing an unknown peer.", failed)
	}
	t.Logf("\t%s\tShould report removing an unknown peer.", success)
}

func Test_SealAndMineLinked(t *testing.T) {
	st, err := state.New(state.Config{Difficulty: 1})
	ifErrFailNow(t, err)

	if _, err := st.SealAndMine(context.Background(), 1); !errors.Is(err, state.ErrNoTransactions) {
		t.Fatalf("\t%s\tShould refuse to seal an empty buffer, got %v.", failed, err)
	}
	t.Logf("\t%s\tShould refuse to seal an empty buffer.", success)

	genesis := st.RetrieveLatestBlock()
	st.SubmitTransaction(database.NewTx("alice", "bob", []byte("1")))

	blk, err := st.SealAndMine(context.Background(), 1)
	ifErrFailNow(t, err)

	if blk.Index != 1 || blk.PreviousHash != genesis.Hash || !miner.IsAcceptable(blk.Hash, 1) {
		t.Fatalf("\t%s\tShould seal and mine a block linked to genesis: %+v", failed, blk)
	}
	t.Logf("\t%s\tShould seal and mine a block linked to genesis.", success)

	ifErrFailNow(t, st.VerifyChain())
}

func Test_SealDuringMining(t *testing.T) {
	st, err := state.New(state.Config{})
	ifErrFailNow(t, err)

	st.SubmitTransaction(database.NewTx("alice", "bob", []byte("1")))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mined := make(chan error, 1)
	go func() {
		_, err := st.SealAndMine(ctx, 64)
		mined <- err
	}()

	deadline := time.Now().Add(10 * time.Second)
	for !st.IsMining() {
		if time.Now().After(deadline) {
			t.Fatalf("\t%s\tShould report the search in progress.", failed)
		}
		time.Sleep(time.Millisecond)
	}
	t.Logf("\t%s\tShould report the search in progress without waiting on it.", success)

	sealed := make(chan database.Block, 1)
	go func() {
		st.SubmitTransaction(database.NewTx("bob", "carol", []byte("2")))
		blk, _ := st.SealPending()
		sealed <- blk
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	if err := <-mined; !errors.Is(err, context.Canceled) {
		t.Fatalf("\t%s\tShould stop the search on cancel, got %v.", failed, err)
	}
	blk := <-sealed

	if st.IsMining() {
		t.Fatalf("\t%s\tShould report the search finished.", failed)
	}

	if blk.Index != 2 {
		t.Fatalf("\t%s\tShould append the concurrent seal after the mined block, got index %d.", failed, blk.Index)
	}
	t.Logf("\t%s\tShould append the concurrent seal after the mined block.", success)

	if err := st.VerifyChain(); err != nil {
		t.Fatalf("\t%s\tShould keep the chain linked: %v", failed, err)
	}
	t.Logf("\t%s\tShould keep the chain linked.", success)
}
