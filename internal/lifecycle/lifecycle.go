// Package lifecycle defines the two order status machines. Transitions are
// checked against fixed successor tables, so skipping a state is rejected even
// when the requested status is "later" than the current one.
package lifecycle

import "marketplace-service/internal/apperr"

// Status is a closed enumeration of order states across both order kinds.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"

	// StatusCompleted is a legacy success alias still present on historical
	// B2B rows. It is terminal and revenue-eligible; it is never written by
	// new transitions.
	StatusCompleted Status = "completed"
)

// Parse validates a stored status string.
func Parse(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled, StatusCompleted:
		return st, nil
	}
	return "", apperr.New(apperr.KindValidation, "unrecognized order status %q", s)
}

var b2cSuccessors = map[Status][]Status{
	StatusPending: {StatusShipped, StatusCancelled},
	StatusShipped: {StatusDelivered},
}

var b2bSuccessors = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
}

func allows(table map[Status][]Status, from, to Status) bool {
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanB2C reports whether a cash-on-delivery order may move from one status to
// the next.
func CanB2C(from, to Status) bool {
	return allows(b2cSuccessors, from, to)
}

// CanB2B reports whether a bulk order may move from one status to the next.
func CanB2B(from, to Status) bool {
	return allows(b2bSuccessors, from, to)
}

// TerminalB2C reports whether the status ends the B2C machine.
func TerminalB2C(s Status) bool {
	return s == StatusDelivered || s == StatusCancelled
}

// TerminalB2B reports whether the status ends the B2B machine.
func TerminalB2B(s Status) bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusCompleted
}

// RevenueEligibleB2C reports whether a B2C order in this status counts toward
// revenue. Only delivered orders do: cash on delivery is collected at the door.
func RevenueEligibleB2C(s Status) bool {
	return s == StatusDelivered
}

// RevenueEligibleB2B reports whether a B2B order in this status counts toward
// revenue. Business orders are invoiced at shipment, hence the wider set.
func RevenueEligibleB2B(s Status) bool {
	switch s {
	case StatusShipped, StatusDelivered, StatusCompleted:
		return true
	}
	return false
}

// RevenueStatusesB2B lists the revenue-eligible B2B statuses for SQL IN
// clauses. Callers must not mutate the returned slice.
func RevenueStatusesB2B() []Status {
	return []Status{StatusShipped, StatusDelivered, StatusCompleted}
}
