package inventory

import (
	"fmt"
	"time"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/google/uuid"
)

// The ledger rules below mutate a product value that the caller has read
// under a row lock, and return the movement row describing the change.
// Snapshots are taken from that locked read, never from a re-read.

func Purchase(p *Product, qty int, note string) (Movement, error) {
	if qty <= 0 {
		return Movement{}, apperr.Validation("quantity must be greater than 0")
	}
	prev := p.QuantityRemaining
	p.QuantityBought += qty
	p.QuantityRemaining += qty
	return newMovement(p, MovementPurchase, qty, prev, note), nil
}

func Sale(p *Product, qty int, note string) (Movement, error) {
	if qty <= 0 {
		return Movement{}, apperr.Validation("quantity must be greater than 0")
	}
	if qty > p.QuantityRemaining {
		return Movement{}, apperr.InsufficientStock(p.ID, qty, p.QuantityRemaining)
	}
	if note == "" {
		note = "Manual sale"
	}
	prev := p.QuantityRemaining
	p.QuantitySold += qty
	p.QuantityRemaining -= qty
	return newMovement(p, MovementSale, qty, prev, note), nil
}

// Adjust re-bases quantityBought. ok is false when nothing changed and no
// movement must be written.
func Adjust(p *Product, newBought int) (m Movement, ok bool, err error) {
	if newBought < 0 {
		return Movement{}, false, apperr.Validation("quantity_bought cannot be negative")
	}
	diff := newBought - p.QuantityBought
	if diff == 0 {
		return Movement{}, false, nil
	}
	if p.QuantityRemaining+diff < 0 {
		return Movement{}, false, apperr.Validation(
			"adjustment to %d would leave negative stock (sold %d)", newBought, p.QuantitySold)
	}
	verb, size := "added", diff
	if diff < 0 {
		verb, size = "removed", -diff
	}
	prev := p.QuantityRemaining
	p.QuantityBought = newBought
	p.QuantityRemaining += diff
	note := fmt.Sprintf("Stock adjustment: %s %d units", verb, size)
	return newMovement(p, MovementAdjustment, size, prev, note), true, nil
}

func newMovement(p *Product, t MovementType, qty, prev int, note string) Movement {
	return Movement{
		ID:            uuid.NewString(),
		ProductID:     p.ID,
		BusinessID:    p.BusinessID,
		Type:          t,
		Quantity:      qty,
		PreviousStock: prev,
		NewStock:      p.QuantityRemaining,
		Notes:         note,
		CreatedAt:     time.Now().UTC(),
	}
}

// Delta is the signed change of remaining stock the movement describes.
func (m Movement) Delta() int { return m.NewStock - m.PreviousStock }
