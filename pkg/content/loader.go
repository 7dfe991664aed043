package content

import (
	"context"
	"os"
	"path/filepath"

	"realmshard/pkg/resilience"
	"realmshard/pkg/retry"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var ErrContentDirMissing = os.ErrNotExist

// Load reads every content file in dir (classes.yaml, weapons.yaml,
// abilities.yaml, armors.yaml, rings.yaml, projectiles.yaml, items.yaml,
// enemies.yaml) and assembles the immutable Table. A file that does not
// exist is treated as an empty table for that kind rather than an error,
// since a partial content set (e.g. tests supplying only enemies.yaml) is
// a normal case.
//
// File reads are wrapped in the shared filesystem circuit breaker and a
// file-system-tuned retrier so a flaky disk degrades startup gracefully
// instead of crashing it outright.
func Load(dir string) (*Table, error) {
	t := newEmptyTable()

	if err := loadInto(dir, "classes.yaml", &t.Classes); err != nil {
		return nil, err
	}
	if err := loadInto(dir, "weapons.yaml", &t.Weapons); err != nil {
		return nil, err
	}
	if err := loadInto(dir, "abilities.yaml", &t.Abilities); err != nil {
		return nil, err
	}
	if err := loadInto(dir, "armors.yaml", &t.Armors); err != nil {
		return nil, err
	}
	if err := loadInto(dir, "rings.yaml", &t.Rings); err != nil {
		return nil, err
	}
	if err := loadInto(dir, "projectiles.yaml", &t.Projectiles); err != nil {
		return nil, err
	}
	if err := loadInto(dir, "items.yaml", &t.Items); err != nil {
		return nil, err
	}
	if err := loadInto(dir, "enemies.yaml", &t.Enemies); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"dir":       dir,
		"classes":   len(t.Classes),
		"weapons":   len(t.Weapons),
		"abilities": len(t.Abilities),
		"armors":    len(t.Armors),
		"rings":     len(t.Rings),
		"items":     len(t.Items),
		"enemies":   len(t.Enemies),
	}).Info("content tables loaded")

	return t, nil
}

// loadInto reads a single YAML file of keyed entries into dst (a pointer to
// a map[string]T). Missing files are silently skipped.
func loadInto[T any](dir, filename string, dst *map[string]T) error {
	path := filepath.Join(dir, filename)

	var data []byte
	breaker := resilience.GetGlobalCircuitBreakerManager().GetOrCreate("content_loader", &resilience.FileSystemConfig)
	err := breaker.Execute(context.Background(), func(ctx context.Context) error {
		retrier := retry.NewRetrier(retry.FileSystemRetryConfig())
		return retrier.Execute(ctx, func(ctx context.Context) error {
			b, readErr := os.ReadFile(path)
			if readErr != nil {
				if os.IsNotExist(readErr) {
					return nil
				}
				return readErr
			}
			data = b
			return nil
		})
	})
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}

	var entries []T
	if unmarshalErr := yaml.Unmarshal(data, &entries); unmarshalErr != nil {
		return unmarshalErr
	}

	m := *dst
	for _, e := range entries {
		id := idOf(e)
		if id != "" {
			m[id] = e
		}
	}
	return nil
}

// idOf extracts the ID field from any content def via a small type switch;
// every def above carries a string ID field.
func idOf(v any) string {
	switch e := v.(type) {
	case ClassDef:
		return e.ID
	case WeaponDef:
		return e.ID
	case AbilityDef:
		return e.ID
	case ArmorDef:
		return e.ID
	case RingDef:
		return e.ID
	case ProjectileDef:
		return e.ID
	case ItemDef:
		return e.ID
	case EnemyDef:
		return e.ID
	default:
		return ""
	}
}
