package logging

import (
	"github.com/rs/zerolog"
)

const (
	storeField     = "store"
	operationField = "op"
)

// ContextHook copies the store and operation tagged by WithStore and
// WithOperation onto events logged with Ctx. Install it on the global
// logger; events without a context are left alone.
type ContextHook struct{}

func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}
	if name := GetStore(ctx); name != "" {
		e.Str(storeField, name)
	}
	if op := GetOperation(ctx); op != "" {
		e.Str(operationField, op)
	}
}
