// Package settings persists the cosmetic preferences: font size and background image.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aretw0/tagnote/pkg/core"
	"github.com/aretw0/tagnote/pkg/typed"
)

// Font size bounds, in points.
const (
	DefaultFontSize = 20
	MinFontSize     = 14
	MaxFontSize     = 30
)

// DefaultBackground is used when nothing (or something unknown) is stored.
const DefaultBackground = "space"

var backgrounds = []string{"space", "space1", "space2", "space3", "blue", "gray"}

var (
	ErrFontSizeRange     = fmt.Errorf("font size must be between %d and %d", MinFontSize, MaxFontSize)
	ErrUnknownBackground = errors.New("unknown background image")
)

// Service reads and writes settings. Reads never fail; writes always report errors.
type Service struct {
	fontSize   *typed.Value[int]
	background *typed.Value[string]
	logger     *slog.Logger
}

// New creates a settings service over storage.
func New(storage core.Storage, codec core.Codec, logger *slog.Logger) *Service {
	return &Service{
		fontSize:   typed.NewValue[int](storage, codec, core.FontSizeKey),
		background: typed.NewValue[string](storage, codec, core.BackgroundKey),
		logger:     logger,
	}
}

// Backgrounds lists the valid background identifiers.
func Backgrounds() []string {
	return slices.Clone(backgrounds)
}

// ValidBackground reports whether id names a known background.
func ValidBackground(id string) bool {
	return slices.Contains(backgrounds, id)
}

// FontSize returns the stored font size or DefaultFontSize.
func (s *Service) FontSize(ctx context.Context) int {
	size, err := s.fontSize.LoadOr(ctx, DefaultFontSize)
	if err != nil {
		s.warn("loading font size failed", err)
	}
	return size
}

// SetFontSize validates and persists size.
func (s *Service) SetFontSize(ctx context.Context, size int) error {
	if size < MinFontSize || size > MaxFontSize {
		return fmt.Errorf("%d: %w", size, ErrFontSizeRange)
	}
	if err := s.fontSize.Store(core.WithChangeReason(ctx, fmt.Sprintf("set font size %d", size)), size); err != nil {
		return fmt.Errorf("save font size: %w", err)
	}
	return nil
}

// Background returns the stored background id or DefaultBackground.
func (s *Service) Background(ctx context.Context) string {
	id, err := s.background.LoadOr(ctx, DefaultBackground)
	if err != nil {
		s.warn("loading background failed", err)
	}
	if !ValidBackground(id) {
		return DefaultBackground
	}
	return id
}

// SetBackground validates and persists id.
func (s *Service) SetBackground(ctx context.Context, id string) error {
	if !ValidBackground(id) {
		return fmt.Errorf("%q: %w", id, ErrUnknownBackground)
	}
	if err := s.background.Store(core.WithChangeReason(ctx, fmt.Sprintf("set background %s", id)), id); err != nil {
		return fmt.Errorf("save background: %w", err)
	}
	return nil
}

// Reset removes both stored settings so the defaults apply again.
func (s *Service) Reset(ctx context.Context) error {
	ctx = core.WithChangeReason(ctx, "reset settings")
	if err := s.fontSize.Clear(ctx); err != nil {
		return fmt.Errorf("reset font size: %w", err)
	}
	if err := s.background.Clear(ctx); err != nil {
		return fmt.Errorf("reset background: %w", err)
	}
	return nil
}

func (s *Service) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, "error", err)
	}
}
