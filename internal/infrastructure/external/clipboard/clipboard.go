// Package clipboard copies the daily report to the system clipboard so the
// teacher can paste it into any messenger.
package clipboard

import (
	"context"

	"github.com/atotto/clipboard"

	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
)

// writeAll is swapped in tests; headless machines have no clipboard.
var writeAll = clipboard.WriteAll

// Sharer writes reports to the clipboard.
type Sharer struct{}

// NewSharer creates a clipboard Sharer.
func NewSharer() *Sharer { return &Sharer{} }

func (s *Sharer) Name() string { return "clipboard" }

// Share copies text to the clipboard.
func (s *Sharer) Share(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if clipboard.Unsupported {
		return shared.ErrClipboard
	}
	if err := writeAll(text); err != nil {
		return shared.WrapError("clipboard", "Share", shared.ErrClipboard, "write", err)
	}
	return nil
}

