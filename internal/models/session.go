package models

import "time"

// TableStatus represents the service status of a dining table
type TableStatus string

const (
	TableFree     TableStatus = "free"
	TableOccupied TableStatus = "occupied"
	TableCleaning TableStatus = "cleaning"
)

// DiningTable is a physical table with a printable code.
type DiningTable struct {
	ID     int         `json:"id" db:"id"`
	Code   string      `json:"code" db:"code"`
	Name   string      `json:"name" db:"name"`
	Status TableStatus `json:"status" db:"status"`
}

// TableSession binds a table to its active order for one service cycle.
// At most one open session exists per table.
type TableSession struct {
	ID       string     `json:"id" db:"id"`
	TableID  int        `json:"table_id" db:"table_id"`
	OrderID  *int       `json:"order_id,omitempty" db:"order_id"`
	OpenedBy string     `json:"opened_by" db:"opened_by"`
	OpenedAt time.Time  `json:"opened_at" db:"opened_at"`
	ClosedAt *time.Time `json:"closed_at,omitempty" db:"closed_at"`
}

// Open reports whether the session is still active.
func (s *TableSession) Open() bool {
	return s.ClosedAt == nil
}
