package authorize

import (
	_ "embed"
	"fmt"
	"sync/atomic"

	casbin "github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

//go:embed model.conf
var defaultModel string

// policyLoadHealthy tracks whether the policy set is usable. It stays false
// until policies are loaded from a file or seeded in code.
var policyLoadHealthy atomic.Bool

// IsPolicyHealthy returns true once policies have been loaded or seeded.
func IsPolicyHealthy() bool {
	return policyLoadHealthy.Load()
}

// NewEnforcer builds a SyncedEnforcer. An empty modelPath uses the embedded
// RBAC model. When policyPath is set the policies are read from that CSV file
// and SeedDefaultPolicies must not be called (the file adapter is read-only).
func NewEnforcer(modelPath, policyPath string) (*casbin.SyncedEnforcer, error) {
	m, err := loadModel(modelPath)
	if err != nil {
		return nil, err
	}

	if policyPath == "" {
		e, err := casbin.NewSyncedEnforcer(m)
		if err != nil {
			return nil, fmt.Errorf("create enforcer: %w", err)
		}
		return e, nil
	}

	e, err := casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(policyPath))
	if err != nil {
		return nil, fmt.Errorf("create enforcer from %q: %w", policyPath, err)
	}
	e.EnableAutoSave(false)
	policyLoadHealthy.Store(true)
	return e, nil
}

func loadModel(path string) (model.Model, error) {
	if path == "" {
		return model.NewModelFromString(defaultModel)
	}
	m, err := model.NewModelFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load casbin model %q: %w", path, err)
	}
	return m, nil
}
