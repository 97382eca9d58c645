package store

import (
	"strings"

	"stockledger/internal/models"
	"stockledger/internal/util"
)

// Settings returns the current display settings.
func (s *Store) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Settings
}

// UpdateSettings replaces the settings record.
func (s *Store) UpdateSettings(settings models.Settings) error {
	return s.mutate("update_settings", func(doc *models.Document) error {
		if settings.PriceMode != "int" && settings.PriceMode != "float" {
			return &ValidationError{Collection: "settings", Field: "price_mode", Reason: "must be int or float"}
		}
		if settings.PriceDecimals < 0 {
			return &ValidationError{Collection: "settings", Field: "price_decimals", Reason: "negative"}
		}
		if settings.DangerConfirmPhrase == "" {
			return &ValidationError{Collection: "settings", Field: "danger_confirm_phrase", Reason: "required"}
		}
		doc.Settings = settings
		return nil
	})
}

// ResetSettings restores the documented defaults.
func (s *Store) ResetSettings() error {
	return s.mutate("reset_settings", func(doc *models.Document) error {
		doc.Settings = models.DefaultSettings()
		return nil
	})
}

// FormatMoney renders a monetary value using the current display settings.
func (s *Store) FormatMoney(value int64) string {
	settings := s.Settings()
	return util.FormatMoney(float64(value), settings.PriceMode, settings.PriceDecimals)
}

// SetCategoryColor stores a presentation color hint for a category.
func (s *Store) SetCategoryColor(category, hexColor string) error {
	return s.mutate("set_category_color", func(doc *models.Document) error {
		category = strings.TrimSpace(category)
		if category == "" {
			return &ValidationError{Collection: "category_colors", Field: "category", Reason: "required"}
		}
		doc.CategoryColors[category] = hexColor
		return nil
	})
}

// CategoryColor returns the color hint for a category, if set.
func (s *Store) CategoryColor(category string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	color, ok := s.doc.CategoryColors[category]
	return color, ok
}
