package events_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/events"
)

func Test_Events(t *testing.T) {
	evts := events.New()

	ch1 := evts.Acquire("one")
	ch2 := evts.Acquire("two")
	if evts.Acquire("one") != ch1 {
		t.Fatal("Should get back the same channel for the same id.")
	}

	evts.Send("database: NewBlock: created block[1]")

	for _, ch := range []chan string{ch1, ch2} {
		if msg := <-ch; msg != "database: NewBlock: created block[1]" {
			t.Fatalf("Should receive the event, got %q.", msg)
		}
	}

	if err := evts.Release("one"); err != nil {
		t.Fatalf("Should be able to release a subscriber: %v", err)
	}
	if _, open := <-ch1; open {
		t.Fatal("Should close the released channel.")
	}
	if err := evts.Release("one"); err == nil {
		t.Fatal("Should not be able to release a subscriber twice.")
	}

	evts.Shutdown()
	if evts.Subscribers() != 0 {
		t.Fatal("Should remove every subscriber on shutdown.")
	}
	if _, open := <-ch2; open {
		t.Fatal("Should close every channel on shutdown.")
	}
}

func Test_SendDoesNotBlock(t *testing.T) {
	evts := events.New()
	evts.Acquire("slow")

	for i := 0; i < 1000; i++ {
		evts.Send("event")
	}
}
