package clipboard

import (
	"context"
	"errors"
	"testing"

	"github.com/atotto/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
)

func stubWriter(t *testing.T, fn func(string) error) {
	t.Helper()
	orig, unsupported := writeAll, clipboard.Unsupported
	writeAll = fn
	clipboard.Unsupported = false
	t.Cleanup(func() {
		writeAll = orig
		clipboard.Unsupported = unsupported
	})
}

func TestSharer_Share(t *testing.T) {
	var got string
	stubWriter(t, func(s string) error { got = s; return nil })

	s := NewSharer()
	require.NoError(t, s.Share(context.Background(), "تقرير"))
	assert.Equal(t, "تقرير", got)
	assert.Equal(t, "clipboard", s.Name())
}

func TestSharer_WriteFailure(t *testing.T) {
	stubWriter(t, func(string) error { return errors.New("no xclip") })

	err := NewSharer().Share(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrClipboard)
	assert.True(t, shared.IsExternalService(err))
}

func TestSharer_Cancelled(t *testing.T) {
	stubWriter(t, func(string) error { t.Fatal("must not write"); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewSharer().Share(ctx, "x"), context.Canceled)
}
