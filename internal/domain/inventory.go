package domain

import "time"

type ProductID string

type Product struct {
	ID         ProductID
	SKU        string
	Name       string
	CategoryID CategoryID
	UnitPrice  float64
	Stock      int64
	MinStock   int64
	Active     bool
	UpdatedAt  time.Time
}

func (p Product) LowStock() bool {
	return p.MinStock > 0 && p.Stock <= p.MinStock
}

type CategoryID string

type Category struct {
	ID          CategoryID
	Name        string
	Description string
}

type MovementKind string

const (
	MovementInbound    MovementKind = "IN"
	MovementOutbound   MovementKind = "OUT"
	MovementAdjustment MovementKind = "ADJUSTMENT"
)

type StockMovement struct {
	ID         string
	ProductID  ProductID
	Kind       MovementKind
	Quantity   int64
	Reason     string
	RecordedBy string
	RecordedAt time.Time
}

type Role struct {
	Name        RoleName
	Description string
	Authorities []string
}
