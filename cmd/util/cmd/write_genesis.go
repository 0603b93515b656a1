package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/onflow/flow-blocksync/cmd/util/cmd/common"
	"github.com/onflow/flow-blocksync/model/flow"
	"github.com/onflow/flow-blocksync/storage"
	"github.com/onflow/flow-blocksync/storage/store"
)

var writeGenesisCmd = &cobra.Command{
	Use:   "write-genesis",
	Short: "store the genesis block, which every chain is built on",
	RunE: func(cmd *cobra.Command, args []string) error {
		return common.WithStorageFromConfig(writeGenesis)
	},
}

func writeGenesis(db storage.Store) error {
	genesis := flow.Genesis()
	err := store.NewBlocks(db, 1).Store(genesis)
	if err != nil {
		return fmt.Errorf("could not store genesis block: %w", err)
	}

	genesisID := genesis.ID()
	log.Info().Hex("block_id", genesisID[:]).Msg("genesis block stored")
	return nil
}
