package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Batch lifecycle states.
const (
	BatchStatusOpen      = "open"
	BatchStatusInTransit = "in_transit"
	BatchStatusArrived   = "arrived"
	BatchStatusDelivered = "delivered"
	BatchStatusClosed    = "closed"
	BatchStatusCancelled = "cancelled"
)

// validBatchTransitions is the single source of truth for the batch state
// machine. Terminal states map to an empty list.
var validBatchTransitions = map[string][]string{
	BatchStatusOpen:      {BatchStatusInTransit, BatchStatusArrived, BatchStatusCancelled},
	BatchStatusInTransit: {BatchStatusArrived, BatchStatusCancelled},
	BatchStatusArrived:   {BatchStatusDelivered},
	BatchStatusDelivered: {BatchStatusClosed},
	BatchStatusClosed:    {},
	BatchStatusCancelled: {},
}

type Batch struct {
	gorm.Model
	BatchCode     string     `json:"batch_code" gorm:"unique;not null"`
	SupervisorID  uint       `json:"supervisor_id" gorm:"not null"`
	TransportMode string     `json:"transport_mode" gorm:"not null"`
	FromLocation  uint       `json:"from_location" gorm:"not null"`
	ToLocation    uint       `json:"to_location" gorm:"not null"`
	VehicleNumber string     `json:"vehicle_number"`
	DriverName    string     `json:"driver_name"`
	ETA           *time.Time `json:"eta"`
	DepartureTime *time.Time `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
	Status        string     `json:"status" gorm:"default:open"`
	TotalCrates   int        `json:"total_crates" gorm:"default:0"`
	TotalWeight   float64    `json:"total_weight" gorm:"default:0"`
	PhotoURL      string     `json:"photo_url"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	Notes         string     `json:"notes"`

	Supervisor *User      `json:"-" gorm:"foreignKey:SupervisorID"`
	Farm       *Farm      `json:"-" gorm:"foreignKey:FromLocation"`
	Packhouse  *Packhouse `json:"-" gorm:"foreignKey:ToLocation"`
}

// ValidateBatchTransition checks whether a batch may move from one status to
// another. The returned error names the allowed transitions.
func ValidateBatchTransition(current, next string) error {
	allowed, ok := validBatchTransitions[current]
	if !ok {
		return fmt.Errorf("unknown batch status '%s'", current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	allowedStr := "none"
	if len(allowed) > 0 {
		allowedStr = strings.Join(allowed, ", ")
	}
	return fmt.Errorf("cannot transition batch from '%s' to '%s'. Allowed transitions: %s", current, next, allowedStr)
}

// CanAcceptCrates reports whether new crates may be attached to the batch.
func (b *Batch) CanAcceptCrates() bool {
	return b.Status == BatchStatusOpen
}

// CanReconcile reports whether crates of the batch may be reconciled at the
// packhouse.
func (b *Batch) CanReconcile() bool {
	return b.Status == BatchStatusArrived || b.Status == BatchStatusDelivered
}
