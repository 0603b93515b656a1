package cmd

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/onflow/flow-blocksync/cmd/util/cmd/common"
	"github.com/onflow/flow-blocksync/engine/common/synchronization"
	"github.com/onflow/flow-blocksync/model/flow"
	"github.com/onflow/flow-blocksync/module/metrics"
	"github.com/onflow/flow-blocksync/storage"
	"github.com/onflow/flow-blocksync/storage/store"
)

var errOffline = errors.New("offline: no network available")

// offlineConduit rejects all messages. The synchronizer is never started by
// the tool, so nothing is published through it.
type offlineConduit struct{}

func (offlineConduit) Publish(interface{}, ...flow.Identifier) error { return errOffline }
func (offlineConduit) Unicast(interface{}, flow.Identifier) error     { return errOffline }

// offlineConsumer rejects all blocks.
type offlineConsumer struct{}

func (offlineConsumer) OnSyncedBlock(*flow.Block) error { return errOffline }

var flagAncestorsBlockID common.IdentifierFlag

func init() {
	readAncestorsCmd.Flags().VarP(&flagAncestorsBlockID, "id", "i", "the identifier of the block whose three-chain is resolved")
	_ = readAncestorsCmd.MarkFlagRequired("id")
}

var readAncestorsCmd = &cobra.Command{
	Use:   "read-ancestors",
	Short: "resolve the three-chain preceding a stored block",
	RunE: func(cmd *cobra.Command, args []string) error {
		return common.WithStorageFromConfig(func(db storage.Store) error {
			threeChain, err := readAncestors(db, flagAncestorsBlockID.Identifier())
			if err != nil {
				return err
			}
			return common.PrettyPrintEntity(threeChain)
		})
	},
}

// readAncestors resolves the three-chain preceding the stored block. The
// parent of the block must be stored as well.
func readAncestors(db storage.Store, blockID flow.Identifier) (flow.ThreeChain, error) {
	blocks := store.NewBlocks(db, 4)
	block, err := blocks.ByID(blockID)
	if err != nil {
		return flow.ThreeChain{}, fmt.Errorf("could not get block %x: %w", blockID, err)
	}

	resolver, err := synchronization.NewSynchronizer(
		log.Logger.Level(zerolog.WarnLevel),
		metrics.NewNoopCollector(),
		blocks,
		offlineConduit{},
		offlineConsumer{},
	)
	if err != nil {
		return flow.ThreeChain{}, fmt.Errorf("could not create ancestor resolver: %w", err)
	}

	threeChain, ok, err := resolver.GetAncestors(block)
	if err != nil {
		return flow.ThreeChain{}, fmt.Errorf("could not resolve ancestors of block %x: %w", blockID, err)
	}
	if !ok {
		parentID := block.ParentID()
		return flow.ThreeChain{}, fmt.Errorf("parent %x of block %x is not stored: %w", parentID, blockID, storage.ErrNotFound)
	}
	return threeChain, nil
}
