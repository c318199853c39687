package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHook(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		fields map[string]string
		absent []string
	}{
		{
			name:   "storage clear",
			ctx:    WithOperation(WithStore(context.Background(), "kvstore"), "clear"),
			fields: map[string]string{"store": "kvstore", "op": "clear"},
		},
		{
			name:   "store without operation",
			ctx:    WithStore(context.Background(), "wishlist"),
			fields: map[string]string{"store": "wishlist"},
			absent: []string{"op"},
		},
		{
			name:   "untagged",
			ctx:    context.Background(),
			absent: []string{"store", "op"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := zerolog.New(&buf).Hook(ContextHook{})
			l.Error().Ctx(tt.ctx).Msg("save cart")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			for k, v := range tt.fields {
				assert.Equal(t, v, entry[k], k)
			}
			for _, k := range tt.absent {
				assert.NotContains(t, entry, k)
			}
		})
	}
}

func TestContextHook_NoCtx(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).Hook(ContextHook{})
	l.Info().Msg("startup")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "store")
}
