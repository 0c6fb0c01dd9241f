package manager

import (
	"errors"
	"testing"

	"github.com/medularis/go-asterisk/internal/testutil/testlog"
	"github.com/medularis/go-asterisk/protocol"
)

func respWith(tag string) *protocol.Message {
	return protocol.ParseMessage([]string{"Response: Success\r\n", "Tag: " + tag + "\r\n"})
}

func TestCorrelatorFIFOPairing(t *testing.T) {
	testlog.Start(t)
	c := newCorrelator()
	w1, err := c.register()
	if err != nil {
		t.Fatalf("register w1: %v", err)
	}
	w2, err := c.register()
	if err != nil {
		t.Fatalf("register w2: %v", err)
	}
	c.deliver(respWith("first"))
	c.deliver(respWith("second"))

	if got := (<-w1).GetHeader("Tag"); got != "first" {
		t.Fatalf("w1 got=%q want=first", got)
	}
	if got := (<-w2).GetHeader("Tag"); got != "second" {
		t.Fatalf("w2 got=%q want=second", got)
	}
}

func TestCorrelatorBuffersWhenNobodyWaits(t *testing.T) {
	testlog.Start(t)
	c := newCorrelator()
	c.deliver(respWith("early"))
	c.deliver(respWith("later"))

	w1, _ := c.register()
	w2, _ := c.register()
	if got := (<-w1).GetHeader("Tag"); got != "early" {
		t.Fatalf("w1 got=%q want=early", got)
	}
	if got := (<-w2).GetHeader("Tag"); got != "later" {
		t.Fatalf("w2 got=%q want=later", got)
	}
}

func TestCorrelatorFailUnblocksEveryWaiterOnce(t *testing.T) {
	testlog.Start(t)
	c := newCorrelator()
	w1, _ := c.register()
	w2, _ := c.register()

	terminal := newTransportError("await", ErrConnectionTerminated)
	if n := c.fail(terminal); n != 2 {
		t.Fatalf("fan-out count got=%d want=2", n)
	}
	if _, ok := <-w1; ok {
		t.Fatalf("w1 should observe termination")
	}
	if _, ok := <-w2; ok {
		t.Fatalf("w2 should observe termination")
	}
	if n := c.fail(terminal); n != 0 {
		t.Fatalf("second fail should be a no-op, got=%d", n)
	}

	if _, err := c.register(); !errors.Is(err, ErrConnectionTerminated) {
		t.Fatalf("register after fail got=%v", err)
	}
	if !errors.Is(c.terminalError(), ErrConnectionTerminated) {
		t.Fatalf("terminal error got=%v", c.terminalError())
	}
}

func TestCorrelatorAbandon(t *testing.T) {
	testlog.Start(t)
	c := newCorrelator()
	w1, _ := c.register()
	w2, _ := c.register()
	c.abandon(w1)
	if got := c.waiterCount(); got != 1 {
		t.Fatalf("waiter count got=%d want=1", got)
	}
	c.deliver(respWith("only"))
	if got := (<-w2).GetHeader("Tag"); got != "only" {
		t.Fatalf("w2 got=%q want=only", got)
	}
}
