// Package economy provides the transaction ledger: coin and item
// exchanges between villagers, with all-or-nothing semantics.
package economy

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emberhollow/villagesim/internal/villager"
)

// Typed precondition failures. Callers check with errors.Is; a failed
// operation performs zero mutation.
var (
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrInsufficientStock = errors.New("insufficient_stock")
	ErrUnknownItem       = errors.New("unknown_item")
)

// TxKind enumerates transaction types.
type TxKind string

const (
	TxPurchase TxKind = "purchase"
	TxGift     TxKind = "gift"
	TxTrade    TxKind = "trade"
	TxPayment  TxKind = "payment"
	TxIncome   TxKind = "income"
	TxRestock  TxKind = "restock"
)

// Record is an immutable fact describing one completed transaction.
// FromID is empty for role income.
type Record struct {
	ID        string    `json:"id"`
	FromID    string    `json:"from_id,omitempty"`
	ToID      string    `json:"to_id"`
	Kind      TxKind    `json:"kind"`
	Coins     int       `json:"coins"`
	Item      string    `json:"item,omitempty"`
	Qty       int       `json:"qty,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats aggregates completed transactions.
type Stats struct {
	CountByKind map[TxKind]int `json:"count_by_kind"`
	CoinsMoved  int            `json:"coins_moved"`
	ItemsMoved  int            `json:"items_moved"`
}

// Ledger validates and applies economic operations, queueing one Record
// per success for the persistence flush.
type Ledger struct {
	mu      sync.Mutex
	pending []Record
	stats   Stats

	// OnRecord, when set, is called synchronously for each appended record.
	OnRecord func(Record)
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{stats: Stats{CountByKind: make(map[TxKind]int)}}
}

func (l *Ledger) append(r Record) {
	r.ID = uuid.NewString()
	l.mu.Lock()
	l.pending = append(l.pending, r)
	l.stats.CountByKind[r.Kind]++
	l.stats.CoinsMoved += r.Coins
	l.stats.ItemsMoved += r.Qty
	cb := l.OnRecord
	l.mu.Unlock()
	if cb != nil {
		cb(r)
	}
}

// Drain atomically removes and returns all queued records.
func (l *Ledger) Drain() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.pending
	l.pending = nil
	return out
}

// Stats returns a copy of the running aggregates.
func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := Stats{
		CountByKind: make(map[TxKind]int, len(l.stats.CountByKind)),
		CoinsMoved:  l.stats.CoinsMoved,
		ItemsMoved:  l.stats.ItemsMoved,
	}
	for k, c := range l.stats.CountByKind {
		cp.CountByKind[k] = c
	}
	return cp
}

// Purchase moves qty of item from seller to buyer for coins. The price is
// the seller's catalog base price adjusted by the relationship tier, unless
// priceOverride (> 0) is given. Fails without mutation on missing catalog
// entry, insufficient stock, or insufficient funds.
func (l *Ledger) Purchase(buyer, seller *villager.Villager, item string, qty int, priceOverride int) (int, error) {
	unit := priceOverride
	if unit <= 0 {
		base, ok := seller.Role.Spec().Catalog[item]
		if !ok {
			return 0, ErrUnknownItem
		}
		unit = PriceFor(base, buyer.TierBetween(seller.ID), true)
	}
	total := unit * qty

	if seller.ItemCount(item) < qty {
		return 0, ErrInsufficientStock
	}
	if buyer.Coins < total {
		return 0, ErrInsufficientFunds
	}

	seller.RemoveItem(item, qty)
	buyer.AddItem(item, qty)
	buyer.Coins -= total
	seller.Coins += total

	l.append(Record{
		FromID:    buyer.ID,
		ToID:      seller.ID,
		Kind:      TxPurchase,
		Coins:     total,
		Item:      item,
		Qty:       qty,
		CreatedAt: time.Now(),
	})
	return total, nil
}

// Gift transfers an item quantity and/or coins from giver to receiver.
func (l *Ledger) Gift(giver, receiver *villager.Villager, item string, qty, coins int) error {
	if item != "" && giver.ItemCount(item) < qty {
		return ErrInsufficientStock
	}
	if giver.Coins < coins {
		return ErrInsufficientFunds
	}

	if item != "" && qty > 0 {
		giver.RemoveItem(item, qty)
		receiver.AddItem(item, qty)
	}
	giver.Coins -= coins
	receiver.Coins += coins

	l.append(Record{
		FromID:    giver.ID,
		ToID:      receiver.ID,
		Kind:      TxGift,
		Coins:     coins,
		Item:      item,
		Qty:       qty,
		CreatedAt: time.Now(),
	})
	return nil
}

// Trade swaps item1×qty1 from v1 against item2×qty2 from v2, no coins.
// Both sides must hold their full stake or nothing moves.
func (l *Ledger) Trade(v1 *villager.Villager, item1 string, qty1 int, v2 *villager.Villager, item2 string, qty2 int) error {
	if v1.ItemCount(item1) < qty1 || v2.ItemCount(item2) < qty2 {
		return ErrInsufficientStock
	}

	v1.RemoveItem(item1, qty1)
	v2.RemoveItem(item2, qty2)
	v1.AddItem(item2, qty2)
	v2.AddItem(item1, qty1)

	l.append(Record{
		FromID:    v1.ID,
		ToID:      v2.ID,
		Kind:      TxTrade,
		Item:      item1 + "/" + item2,
		Qty:       qty1 + qty2,
		CreatedAt: time.Now(),
	})
	return nil
}

// Payment moves coins from payer to receiver.
func (l *Ledger) Payment(payer, receiver *villager.Villager, amount int) error {
	if payer.Coins < amount {
		return ErrInsufficientFunds
	}
	payer.Coins -= amount
	receiver.Coins += amount

	l.append(Record{
		FromID:    payer.ID,
		ToID:      receiver.ID,
		Kind:      TxPayment,
		Coins:     amount,
		CreatedAt: time.Now(),
	})
	return nil
}

// DailyIncome credits the villager's role income and returns the amount.
func (l *Ledger) DailyIncome(v *villager.Villager) int {
	amount := v.Role.Spec().DailyIncome
	v.Coins += amount

	l.append(Record{
		ToID:      v.ID,
		Kind:      TxIncome,
		Coins:     amount,
		CreatedAt: time.Now(),
	})
	return amount
}

// Restock tops the villager's stock back up to the role's starting
// quantities. Returns the total units added; zero units appends no record.
func (l *Ledger) Restock(v *villager.Villager) int {
	added := 0
	for item, target := range v.Role.Spec().StartingItems {
		if have := v.ItemCount(item); have < target {
			v.AddItem(item, target-have)
			added += target - have
		}
	}
	if added == 0 {
		return 0
	}

	l.append(Record{
		ToID:      v.ID,
		Kind:      TxRestock,
		Qty:       added,
		CreatedAt: time.Now(),
	})
	return added
}
