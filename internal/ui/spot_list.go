package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/ngmaloney/marine-sessions/internal/models"
)

// spotItem wraps a Spot for use in a list
type spotItem struct {
	spot models.Spot
}

// FilterValue implements list.Item
func (s spotItem) FilterValue() string {
	return s.spot.Name
}

// Title implements list.DefaultItem
func (s spotItem) Title() string {
	return s.spot.Name
}

// Description implements list.DefaultItem
func (s spotItem) Description() string {
	return fmt.Sprintf("%.3f, %.3f • tides: %s", s.spot.Latitude, s.spot.Longitude, s.spot.TideHarbour)
}

// createSpotList creates a list.Model from saved spots
func createSpotList(spots []models.Spot, width, height int) list.Model {
	items := make([]list.Item, len(spots))
	for i, spot := range spots {
		items[i] = spotItem{spot: spot}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Select a Spot"
	l.SetShowHelp(true)
	l.SetFilteringEnabled(false)

	return l
}
