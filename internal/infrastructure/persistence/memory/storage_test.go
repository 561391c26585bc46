package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
)

func TestStorage_LoadSave(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()

	_, err := s.Load(ctx, "students")
	assert.True(t, shared.IsNotFound(err))

	value := []byte(`[{"id":1,"name":"علي"}]`)
	require.NoError(t, s.Save(ctx, map[string][]byte{"students": value}))
	value[0] = 'X'

	got, err := s.Load(ctx, "students")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"name":"علي"}]`, string(got), "stored values are copies")
}

func TestStorage_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, NewStorage().Save(ctx, map[string][]byte{"x": nil}), context.Canceled)
}
