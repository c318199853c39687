package shop

import (
	"context"

	"github.com/colonyops/storefront/internal/core/config"
	"github.com/colonyops/storefront/internal/core/diagnostics"
	"github.com/colonyops/storefront/internal/core/doctor"
	"github.com/colonyops/storefront/internal/core/kvstore"
	"github.com/colonyops/storefront/internal/core/storage"
)

// DoctorService runs health checks on the local storage setup.
type DoctorService struct {
	kv       *kvstore.Store
	backend  storage.Backend
	recorder *diagnostics.Recorder
	config   *config.Config
}

// NewDoctorService creates a new DoctorService.
func NewDoctorService(kv *kvstore.Store, backend storage.Backend, recorder *diagnostics.Recorder, cfg *config.Config) *DoctorService {
	return &DoctorService{kv: kv, backend: backend, recorder: recorder, config: cfg}
}

// RunChecks executes all doctor checks and returns results.
func (d *DoctorService) RunChecks(ctx context.Context, configPath string, autofix bool) []doctor.Result {
	checks := []doctor.Check{
		doctor.NewConfigCheck(d.config, configPath),
		doctor.NewStorageCheck(d.kv, autofix),
	}
	if src, ok := d.backend.(doctor.SchemaSource); ok {
		checks = append(checks, doctor.NewSchemaCheck(src))
	}
	checks = append(checks, doctor.NewDiagnosticsCheck(d.recorder))
	return doctor.RunAll(ctx, checks)
}
