package movement

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestLedgerAddAndTake(t *testing.T) {
	l := NewLedger()
	l.Add(1, "SEEDS-001", dec("100"))

	granted := l.Take(1, "SEEDS-001", dec("30"))
	assert.True(t, granted.Equal(dec("30")))
	assert.True(t, l.Available(1, "SEEDS-001").Equal(dec("70")))
}

func TestLedgerPartialFulfilment(t *testing.T) {
	l := NewLedger()
	l.Add(1, "SEEDS-001", dec("10"))

	granted := l.Take(1, "SEEDS-001", dec("25"))
	assert.True(t, granted.Equal(dec("10")), "grants what is on hand")
	assert.True(t, l.Available(1, "SEEDS-001").IsZero())

	again := l.Take(1, "SEEDS-001", dec("5"))
	assert.True(t, again.IsZero(), "empty shelf grants nothing")
}

func TestLedgerTransfer(t *testing.T) {
	l := NewLedger()
	l.Add(1, "TOOLS-001", dec("40"))

	granted := l.Transfer(1, 2, "TOOLS-001", dec("15"))
	assert.True(t, granted.Equal(dec("15")))
	assert.True(t, l.Available(1, "TOOLS-001").Equal(dec("25")))
	assert.True(t, l.Available(2, "TOOLS-001").Equal(dec("15")))
}

func TestLedgerIgnoresNonPositive(t *testing.T) {
	l := NewLedger()
	l.Add(1, "X", dec("-5"))
	assert.True(t, l.Available(1, "X").IsZero())

	granted := l.Take(1, "X", dec("0"))
	assert.True(t, granted.IsZero())
}

func TestLedgerSumLocations(t *testing.T) {
	l := NewLedger()
	l.Add(1, "X", dec("10"))
	l.Add(2, "X", dec("5"))
	l.Add(3, "Y", dec("99"))

	assert.True(t, l.SumLocations("X", []int64{1, 2, 3}).Equal(dec("15")))
	assert.True(t, l.SumLocations("X", []int64{2}).Equal(dec("5")))
}

func TestKeyedPoolSerializesPerKey(t *testing.T) {
	p := newKeyedPool(4)

	var order []int
	for i := 0; i < 200; i++ {
		i := i
		// Same key: the pool must run these in submission order without
		// any additional locking by the caller.
		p.submit("KIGAL/SEEDS-001", func() {
			order = append(order, i)
		})
	}
	p.close()

	for i, v := range order {
		assert.Equal(t, i, v)
	}
	assert.Len(t, order, 200)
}

func TestKeyedPoolDrainWaitsForAll(t *testing.T) {
	p := newKeyedPool(3)
	defer p.close()

	var n atomic.Int32
	for i := 0; i < 30; i++ {
		p.submit(fmt.Sprintf("wh-%d", i%7), func() { n.Add(1) })
	}
	p.drain()

	assert.Equal(t, int32(30), n.Load())
}
