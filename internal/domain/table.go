package domain

import "time"

// Table is a dining table on the floor plan.
type Table struct {
	ID          int64
	Name        string
	Capacity    int
	IsAvailable bool
	PositionX   int
	PositionY   int
	CreatedAt   time.Time
}

// TableSession records one seating: which user occupied which table,
// and for how long. EndTime is nil while the session is open.
type TableSession struct {
	ID        int64
	TableID   int64
	UserID    int64
	StartTime time.Time
	EndTime   *time.Time
}
