package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mvaldes/invctl/internal/domain"
)

const movementsPath = "/api/movements"

type MovementsClient struct {
	*Client
}

func NewMovementsClient(client *Client) *MovementsClient {
	return &MovementsClient{Client: client}
}

type movementSchema struct {
	ID         string `json:"id"`
	ProductID  string `json:"productId"`
	Kind       string `json:"kind"`
	Quantity   int64  `json:"quantity"`
	Reason     string `json:"reason,omitempty"`
	RecordedBy string `json:"recordedBy,omitempty"`
	RecordedAt string `json:"recordedAt,omitempty"`
}

type MovementFilter struct {
	ProductID domain.ProductID
	Kind      domain.MovementKind
}

func (f MovementFilter) query() string {
	values := url.Values{}
	if f.ProductID != "" {
		values.Set("productId", string(f.ProductID))
	}
	if f.Kind != "" {
		values.Set("kind", string(f.Kind))
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

func (m *MovementsClient) List(ctx context.Context, filter MovementFilter) ([]domain.StockMovement, error) {
	var entries []movementSchema
	if err := m.do(ctx, http.MethodGet, movementsPath+filter.query(), nil, &entries); err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}

	movements := make([]domain.StockMovement, 0, len(entries))
	for _, entry := range entries {
		movements = append(movements, movementFromSchema(entry))
	}

	return movements, nil
}

func (m *MovementsClient) Record(ctx context.Context, movement domain.StockMovement) (domain.StockMovement, error) {
	payload := movementSchema{
		ProductID: string(movement.ProductID),
		Kind:      string(movement.Kind),
		Quantity:  movement.Quantity,
		Reason:    movement.Reason,
	}

	var entry movementSchema
	if err := m.do(ctx, http.MethodPost, movementsPath, payload, &entry); err != nil {
		return domain.StockMovement{}, fmt.Errorf("record stock movement: %w", err)
	}

	return movementFromSchema(entry), nil
}

func movementFromSchema(entry movementSchema) domain.StockMovement {
	recordedAt, _ := time.Parse(time.RFC3339, entry.RecordedAt)
	return domain.StockMovement{
		ID:         entry.ID,
		ProductID:  domain.ProductID(entry.ProductID),
		Kind:       domain.MovementKind(entry.Kind),
		Quantity:   entry.Quantity,
		Reason:     entry.Reason,
		RecordedBy: entry.RecordedBy,
		RecordedAt: recordedAt,
	}
}
