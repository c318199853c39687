package doctor

import (
	"context"
	"fmt"

	"github.com/colonyops/storefront/internal/core/diagnostics"
)

// DiagnosticsCheck summarizes the records the stores dropped, truncated or
// failed to migrate during this process.
type DiagnosticsCheck struct {
	recorder *diagnostics.Recorder
}

// NewDiagnosticsCheck creates a new diagnostics check.
func NewDiagnosticsCheck(recorder *diagnostics.Recorder) *DiagnosticsCheck {
	return &DiagnosticsCheck{recorder: recorder}
}

func (c *DiagnosticsCheck) Name() string {
	return "Data Integrity"
}

func (c *DiagnosticsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	totals := c.recorder.Totals()
	if len(totals) == 0 {
		result.add("records", StatusPass, "no records dropped or repaired")
		return result
	}

	for _, kind := range c.recorder.Kinds() {
		n := totals[kind]
		switch kind {
		case diagnostics.KindMigrated, diagnostics.KindPurged:
			result.add(string(kind), StatusPass, fmt.Sprintf("%d", n))
		default:
			result.add(string(kind), StatusWarn, fmt.Sprintf("%d, see log for details", n))
		}
	}
	return result
}
