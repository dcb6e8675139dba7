package cli

import apperrors "github.com/agbru/primegen/internal/errors"

// Ensure CLIColorProvider implements apperrors.ColorProvider at compile time.
var _ apperrors.ColorProvider = CLIColorProvider{}

// CLIColorProvider implements apperrors.ColorProvider with the colors of the
// current theme, so error reports follow the --no-color setting.
type CLIColorProvider struct{}

// Yellow returns the warning color of the current theme.
func (c CLIColorProvider) Yellow() string { return ColorYellow() }

// Red returns the error color of the current theme.
func (c CLIColorProvider) Red() string { return ColorRed() }

// Reset returns the reset code of the current theme.
func (c CLIColorProvider) Reset() string { return ColorReset() }
