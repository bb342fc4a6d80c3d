package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/fundnav/internal/clientdata"
	"github.com/aristath/fundnav/internal/config"
	"github.com/aristath/fundnav/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens client_data.db and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// client_data.db - L2 cache for holdings disclosures and the fund directory
	clientDataDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "client_data.db"),
		Profile: database.ProfileCache,
		Name:    "client_data",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize client_data database: %w", err)
	}

	if err := clientDataDB.Migrate(clientdata.Schema); err != nil {
		clientDataDB.Close()
		return nil, fmt.Errorf("failed to migrate client_data database: %w", err)
	}
	container.ClientDataDB = clientDataDB
	container.ClientDataRepo = clientdata.NewRepository(clientDataDB.Conn())

	log.Info().Str("path", clientDataDB.Path()).Msg("Databases initialized")
	return container, nil
}
