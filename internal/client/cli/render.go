package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/dragoncontacts/internal/client/models"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/validate"
)

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#6B7280")

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle = lipgloss.NewStyle().Foreground(muted)
)

func field(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-9s", label)) + " " + value
}

// renderCard draws a bordered card with every contact field.
func renderCard(c models.Contact, photoURL string) string {
	lines := []string{
		titleStyle.Render(c.Name),
		field("ID", c.ID),
		field("Email", c.Email),
		field("Phone", validate.FormatPhone(c.Phone)),
		field("CPF", validate.FormatCPF(c.CPF)),
	}
	if c.Address != nil {
		lines = append(lines, field("Address", formatAddress(*c.Address)))
	}
	if c.Location != nil {
		lines = append(lines, field("Location", formatCoordinates(*c.Location)))
	}
	if photoURL != "" {
		lines = append(lines, field("Photo", photoURL))
	}
	lines = append(lines, field("Updated", c.UpdatedAt.Local().Format("2006-01-02 15:04")))
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// renderList prints one line per contact, name first.
func renderList(contacts []models.Contact) string {
	var sb strings.Builder
	for _, c := range contacts {
		fmt.Fprintf(&sb, "%s  %s  %s  %s\n",
			titleStyle.Render(c.Name),
			validate.FormatCPF(c.CPF),
			c.Email,
			labelStyle.Render(c.ID),
		)
	}
	return sb.String()
}

func formatAddress(a models.Address) string {
	parts := []string{strings.TrimSpace(a.Street + ", " + a.Number)}
	if a.Complement != "" {
		parts = append(parts, a.Complement)
	}
	parts = append(parts, a.Neighborhood, a.City+"/"+a.State, validate.FormatCEP(a.PostalCode))
	return strings.Join(parts, " - ")
}

func formatPostal(p models.PostalAddress) string {
	return fmt.Sprintf("%s - %s - %s/%s - %s", p.Street, p.Neighborhood, p.City, p.State, validate.FormatCEP(p.PostalCode))
}

func formatCoordinates(c models.Coordinates) string {
	return fmt.Sprintf("%.6f, %.6f", c.Latitude, c.Longitude)
}

func mapsLink(c models.Coordinates) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%.6f,%.6f", c.Latitude, c.Longitude)
}
