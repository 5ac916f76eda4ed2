package status

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mvaldes/invctl/internal/domain"
	"github.com/mvaldes/invctl/internal/session"
)

// Report is everything the status view shows: the session, the backend it
// points at, and an optional low-stock summary.
type Report struct {
	Backend      string
	State        session.State
	User         *domain.UserProfile
	ActiveCalls  int64
	Busy         bool
	LowStock     []domain.Product
	TokenExpires time.Time
}

type RenderOptions struct {
	Now time.Time
}

func renderView(report Report, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Inventory Backend Status"),
		s.header.Render(fmt.Sprintf("backend: %s", report.Backend)),
	}

	lines = append(lines, sessionLine(report, s))
	if report.User != nil {
		lines = append(lines, s.detail.Render(fmt.Sprintf("user: %s <%s> role=%s", report.User.DisplayName, report.User.Email, report.User.Role)))
	}
	lines = append(lines, requestLine(report, s))

	if expiry := expiryLine(report, opts, s); expiry != "" {
		lines = append(lines, expiry)
	}

	if len(report.LowStock) > 0 {
		lines = append(lines, s.section.Render(renderLowStock(report.LowStock, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func sessionLine(report Report, s styles) string {
	switch report.State {
	case session.StateAuthenticated:
		return s.ok.Render("session: authenticated")
	case session.StateRefreshing:
		return s.warning.Render("session: refreshing")
	default:
		return s.empty.Render("session: signed out")
	}
}

func requestLine(report Report, s styles) string {
	label := fmt.Sprintf("requests in flight: %d", report.ActiveCalls)
	if report.Busy {
		label += " (busy indicator on)"
	}
	return s.detail.Render(label)
}

func expiryLine(report Report, opts RenderOptions, s styles) string {
	if report.TokenExpires.IsZero() || opts.Now.IsZero() {
		return ""
	}

	remaining := report.TokenExpires.Sub(opts.Now).Round(time.Second)
	if remaining <= 0 {
		return s.warning.Render("access token: expired (will refresh on next call)")
	}
	return s.detail.Render(fmt.Sprintf("access token: expires in %s", remaining))
}

func renderLowStock(products []domain.Product, s styles) string {
	parts := []string{
		s.warning.Render(fmt.Sprintf("low stock: %d product(s)", len(products))),
	}

	for _, product := range products {
		parts = append(parts, s.detail.Render(fmt.Sprintf("  %-12s %-24s stock %d / min %d", product.SKU, product.Name, product.Stock, product.MinStock)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
