package model

import "fmt"

// FulfillmentStatus is the single status of a whole order
type FulfillmentStatus string

const (
	StatusPending    FulfillmentStatus = "Pending"
	StatusProcessing FulfillmentStatus = "Processing"
	StatusShipped    FulfillmentStatus = "Shipped"
	StatusDelivered  FulfillmentStatus = "Delivered"
	StatusCancelled  FulfillmentStatus = "Cancelled"
)

// FulfillmentStatuses lists every valid status in lifecycle order
var FulfillmentStatuses = []FulfillmentStatus{
	StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled,
}

// ParseFulfillmentStatus accepts only the exact status names
func ParseFulfillmentStatus(s string) (FulfillmentStatus, error) {
	st := FulfillmentStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown fulfillment status %q", s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses
func (s FulfillmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s FulfillmentStatus) String() string { return string(s) }
