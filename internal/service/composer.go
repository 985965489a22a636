package service

import (
	"fmt"
	"strconv"
	"strings"

	"housing-assistant/internal/model"
)

const (
	// NoListingsText is the table rendering of an empty result
	NoListingsText = "No matching listings."

	descriptionPreviewRunes = 20
)

var tableHeaders = []string{"#", "Title", "City", "District", "Price", "Area", "Bedrooms", "Floor", "Orientation", "Description"}

// Composer renders retrieved listings into the grounding context for the chat model
type Composer struct {
	noMatchReply string
}

// NewComposer creates a composer; noMatchReply is the sentence the model
// must answer with when no listing fits
func NewComposer(noMatchReply string) *Composer {
	if strings.TrimSpace(noMatchReply) == "" {
		noMatchReply = "No matching listings were found."
	}
	return &Composer{noMatchReply: noMatchReply}
}

// RenderTable formats listings as a pipe table, one numbered row per listing
func (c *Composer) RenderTable(listings []model.Listing) string {
	if len(listings) == 0 {
		return NoListingsText
	}

	separators := make([]string, len(tableHeaders))
	for i := range separators {
		separators[i] = "---"
	}

	lines := make([]string, 0, len(listings)+2)
	lines = append(lines, tableRow(tableHeaders), tableRow(separators))
	for i, l := range listings {
		lines = append(lines, tableRow([]string{
			strconv.Itoa(i + 1),
			l.Title,
			l.City,
			deref(l.District),
			strconv.FormatInt(l.Price, 10),
			formatArea(l.Area),
			formatInt(l.Bedrooms),
			deref(l.Floor),
			deref(l.Orientation),
			truncateRunes(deref(l.Description), descriptionPreviewRunes),
		}))
	}
	return strings.Join(lines, "\n")
}

// BuildMessages returns the instruction, the listing table when there is
// one, and finally the user's query
func (c *Composer) BuildMessages(listings []model.Listing, query string) []ChatMessage {
	messages := []ChatMessage{{
		Role: RoleSystem,
		Content: fmt.Sprintf(
			"You are a housing assistant. Answer the user's question using only the local listing data provided. "+
				"Do not invent listings or details. If no listing fits, reply: %q", c.noMatchReply),
	}}

	if len(listings) > 0 {
		messages = append(messages, ChatMessage{
			Role:    RoleSystem,
			Content: "Local listing search results (table):\n" + c.RenderTable(listings),
		})
	}

	return append(messages, ChatMessage{Role: RoleUser, Content: query})
}

func tableRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, cell := range cells {
		cell = strings.ReplaceAll(cell, "\n", " ")
		escaped[i] = strings.ReplaceAll(cell, "|", `\|`)
	}
	return "| " + strings.Join(escaped, " | ") + " |"
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatArea(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
