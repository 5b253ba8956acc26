package registry

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/canvas/internal/domain/layout"
)

// Seeder creates canvases from layout files on startup
type Seeder struct {
	manager *Manager
	pattern string
	logger  *zap.Logger
}

// NewSeeder creates a seeder for files matching pattern
func NewSeeder(manager *Manager, pattern string, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{manager: manager, pattern: pattern, logger: logger}
}

// Seed creates one canvas per layout file. Files that fail to load or
// create are logged and skipped.
func (s *Seeder) Seed() (loaded int, err error) {
	if s.pattern == "" {
		return 0, nil
	}
	s.logger.Info("seeding canvases", zap.String("pattern", s.pattern))

	paths, err := layout.Glob(s.pattern)
	if err != nil {
		return 0, err
	}

	var failed int
	for _, path := range paths {
		l, err := layout.Load(path)
		if err == nil {
			_, err = s.manager.Create(l.Name, l.Windows)
		}
		if err != nil {
			s.logger.Warn("failed to seed canvas", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}
		loaded++
	}

	s.logger.Info("seeding complete", zap.Int("loaded", loaded), zap.Int("failed", failed))
	return loaded, nil
}
