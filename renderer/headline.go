package renderer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/etnz/hportfolio"
)

var (
	gainStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#0ec43e"))
	lossStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#de0700"))
	plainStyle = lipgloss.NewStyle()
	totalStyle = lipgloss.NewStyle().Bold(true)
)

// styleFor picks the color of a change.
func styleFor(p hportfolio.Percent) lipgloss.Style {
	switch {
	case !p.Valid():
		return plainStyle
	case p > 0:
		return gainStyle
	case p < 0:
		return lossStyle
	default:
		return plainStyle
	}
}

// Headline renders one colored line per held ticker with its day change,
// followed by the total value and profit and loss.
func Headline(s *Summary) string {
	var b strings.Builder
	for _, h := range s.Holdings {
		if h.Cash {
			continue
		}
		price := "n/a"
		if h.Priced {
			price = h.Price.String()
		}
		line := fmt.Sprintf("%s(%s): %s (%s)", h.Ticker, h.Quantity, price, h.DayChangePercent.SignedString())
		b.WriteString(styleFor(h.DayChangePercent).Render(line))
		b.WriteByte('\n')
	}
	b.WriteString(totalStyle.Render(fmt.Sprintf("Total: %s", s.Value)))
	b.WriteString("  ")
	b.WriteString(styleFor(s.PnLPercent).Render(fmt.Sprintf("P&L: %s (%s)", s.PnL.SignedString(), s.PnLPercent.SignedString())))
	b.WriteByte('\n')
	return b.String()
}
