package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/onflow/flow-blocksync/cmd/util/cmd/common"
	"github.com/onflow/flow-blocksync/storage"
	"github.com/onflow/flow-blocksync/storage/store"
)

var flagBlockID common.IdentifierFlag

func init() {
	readBlockCmd.Flags().VarP(&flagBlockID, "id", "i", "the identifier of the block")
	_ = readBlockCmd.MarkFlagRequired("id")
}

var readBlockCmd = &cobra.Command{
	Use:   "read-block",
	Short: "get a block by ID",
	RunE: func(cmd *cobra.Command, args []string) error {
		return common.WithStorageFromConfig(func(db storage.Store) error {
			blockID := flagBlockID.Identifier()
			log.Info().Msgf("getting block by id: %v", blockID)
			block, err := store.NewBlocks(db, 1).ByID(blockID)
			if err != nil {
				return fmt.Errorf("could not get block %x: %w", blockID, err)
			}
			return common.PrettyPrintEntity(block)
		})
	},
}
