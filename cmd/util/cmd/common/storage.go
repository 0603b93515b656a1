package common

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/onflow/flow-blocksync/storage"
	"github.com/onflow/flow-blocksync/storage/badger"
	"github.com/onflow/flow-blocksync/storage/pebble"
)

const (
	BackendBadger = "badger"
	BackendPebble = "pebble"
)

// InitDataDirFlag registers the persistent --datadir flag on the command.
func InitDataDirFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String("datadir", "/var/blocksync/data", "directory of the block database")
}

// InitBackendFlag registers the persistent --backend flag on the command.
func InitBackendFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String("backend", BackendBadger, "storage backend of the block database (badger, pebble)")
}

// InitStorage opens the block database in dir with the given backend.
func InitStorage(dir string, backend string) (storage.Store, error) {
	switch backend {
	case BackendBadger:
		return badger.Open(dir)
	case BackendPebble:
		return pebble.Open(dir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// WithStorage opens the block database in dir, runs f on it and closes it
// again, also when f fails.
func WithStorage(dir string, backend string, f func(storage.Store) error) error {
	db, err := InitStorage(dir, backend)
	if err != nil {
		return fmt.Errorf("could not open %s block database in %s: %w", backend, dir, err)
	}

	var result *multierror.Error
	err = f(db)
	if err != nil {
		result = multierror.Append(result, err)
	}
	err = db.Close()
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("could not close block database: %w", err))
	}
	return result.ErrorOrNil()
}

// WithStorageFromConfig runs f on the block database selected by the
// --datadir and --backend flags, or their environment overrides.
func WithStorageFromConfig(f func(storage.Store) error) error {
	return WithStorage(viper.GetString("datadir"), viper.GetString("backend"), f)
}

// PrettyPrintEntity prints the entity as indented JSON.
func PrettyPrintEntity(entity interface{}) error {
	bytes, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal entity: %w", err)
	}
	fmt.Println(string(bytes))
	return nil
}
