package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaldes/invctl/internal/domain"
	"github.com/mvaldes/invctl/internal/session"
)

func sampleReport() Report {
	return Report{
		Backend: "https://inventory.example.com",
		State:   session.StateAuthenticated,
		User: &domain.UserProfile{
			ID:          "u1",
			Username:    "mgarcia",
			DisplayName: "Maria Garcia",
			Email:       "mgarcia@example.com",
			Role:        domain.RoleManager,
			Active:      true,
		},
		ActiveCalls: 2,
		Busy:        true,
	}
}

func TestRenderViewAuthenticatedSession(t *testing.T) {
	t.Parallel()

	out := renderView(sampleReport(), RenderOptions{}, newStyles())

	assert.Contains(t, out, "Inventory Backend Status")
	assert.Contains(t, out, "backend: https://inventory.example.com")
	assert.Contains(t, out, "session: authenticated")
	assert.Contains(t, out, "Maria Garcia")
	assert.Contains(t, out, "requests in flight: 2")
	assert.Contains(t, out, "busy indicator on")
}

func TestRenderViewSignedOut(t *testing.T) {
	t.Parallel()

	out := renderView(Report{
		Backend: "http://localhost:8080",
		State:   session.StateUnauthenticated,
	}, RenderOptions{}, newStyles())

	assert.Contains(t, out, "session: signed out")
	assert.NotContains(t, out, "role=")
	assert.NotContains(t, out, "busy indicator on")
}

func TestRenderViewTokenExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	report := sampleReport()
	report.TokenExpires = now.Add(10 * time.Minute)
	out := renderView(report, RenderOptions{Now: now}, newStyles())
	assert.Contains(t, out, "expires in 10m0s")

	report.TokenExpires = now.Add(-time.Minute)
	out = renderView(report, RenderOptions{Now: now}, newStyles())
	assert.Contains(t, out, "access token: expired")
}

func TestRenderViewLowStockSection(t *testing.T) {
	t.Parallel()

	report := sampleReport()
	report.LowStock = []domain.Product{
		{SKU: "A-1", Name: "Anchor bolt", Stock: 3, MinStock: 10},
		{SKU: "B-2", Name: "Bearing", Stock: 0, MinStock: 5},
	}

	out := renderView(report, RenderOptions{}, newStyles())
	assert.Contains(t, out, "low stock: 2 product(s)")
	assert.Contains(t, out, "Anchor bolt")
	assert.Contains(t, out, "Bearing")
}

func TestRenderProducesFinalView(t *testing.T) {
	out, err := Render(sampleReport(), RenderOptions{})
	require.NoError(t, err)
	assert.Contains(t, out, "Inventory Backend Status")
}
