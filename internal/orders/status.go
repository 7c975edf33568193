package orders

import "github.com/dukapilot/biashara360/internal/apperr"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:   {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := validNext[st]; !ok {
		return "", apperr.Validation("invalid order status %q", s)
	}
	return st, nil
}

// CanTransition allows staying in the same status so a payment code can be
// attached without moving the order.
func CanTransition(from, to Status) bool {
	if from == to {
		_, ok := validNext[from]
		return ok
	}
	return validNext[from][to]
}
