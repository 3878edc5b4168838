package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/database"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	store docstore.Store
}

// NewSystemService creates a new SystemService
func NewSystemService(store docstore.Store) *SystemService {
	return &SystemService{
		store: store,
	}
}

// CheckHealth checks that the document store answers.
func (s *SystemService) CheckHealth(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// CheckVersion reports the build version and store driver. The SQLite store also
// reports its migration version.
func (s *SystemService) CheckVersion() model.VersionInfo {
	info := model.VersionInfo{
		AppVersion:  version.Version,
		StoreDriver: s.store.Driver(),
	}
	if sqlite, ok := s.store.(*docstore.SQLiteStore); ok {
		v, err := database.SchemaVersion(sqlite.DB())
		if err != nil {
			log.Warn().Err(err).Msg("could not read schema version")
			return info
		}
		info.SchemaVersion = &v
	}
	return info
}
