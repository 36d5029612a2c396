/*
Package game
File: tokens.go
Description:
    The PLASMA token balance of one ship. Pickups add to it, destruction halves it.
    The balance never goes negative and saturates at math.MaxInt.
*/

package game

import "math"

// TokenLedger is the PLASMA token balance of one ship.
type TokenLedger struct {
	collected int
}

func (l *TokenLedger) Balance() int { return l.collected }

// Collect adds a consumed pickup's value. Negative values count as 0.
func (l *TokenLedger) Collect(value int) int {
	if value <= 0 {
		return l.collected
	}
	if value > math.MaxInt-l.collected {
		l.collected = math.MaxInt
	} else {
		l.collected += value
	}
	return l.collected
}

// ForfeitOnDestruction drops half the balance (floor) and returns the dropped amount.
// Odd balances keep the larger half: 5 drops 2 and keeps 3.
func (l *TokenLedger) ForfeitOnDestruction() int {
	dropped := l.collected / 2
	l.collected -= dropped
	return dropped
}

func (l *TokenLedger) restore(balance int) {
	l.collected = max(0, balance)
}
