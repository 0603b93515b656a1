package flow

import "bytes"

// Block is a HotStuff block proposal. The parent of a block is the block
// certified by its QC, so a block is linked to its ancestry through the chain
// of QCs.
type Block struct {
	View       uint64
	QC         *QuorumCertificate // certifies the parent block
	ProposerID Identifier
	Payload    []byte
}

// Genesis returns the well-known genesis block. Its QC equals GenesisQC, which
// terminates every ancestor walk.
func Genesis() *Block {
	return &Block{
		View:    0,
		QC:      GenesisQC(),
		Payload: nil,
	}
}

// ID returns the content digest of the block.
func (b *Block) ID() Identifier {
	return MakeID(b)
}

// ParentID returns the ID of the parent block, which is the block certified
// by the block's QC.
func (b *Block) ParentID() Identifier {
	if b.QC == nil {
		return ZeroID
	}
	return b.QC.BlockID
}

// CertifiedByGenesisQC returns true if the block's QC is the genesis QC. This
// holds for the genesis block itself and for blocks built on it with the
// genesis QC, whose parent is the genesis block.
func (b *Block) CertifiedByGenesisQC() bool {
	return b.QC.IsGenesis()
}

// Equals returns true if both blocks carry the same content.
func (b *Block) Equals(other *Block) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.View == other.View &&
		b.ProposerID == other.ProposerID &&
		b.QC.Equals(other.QC) &&
		bytes.Equal(b.Payload, other.Payload)
}

// ThreeChain holds the three most recent ancestors of a block ordered from
// oldest to newest: B2 is the parent of the block, B1 the parent of B2 and B0
// the parent of B1. The commit rule is evaluated over this chain.
type ThreeChain struct {
	B0 *Block
	B1 *Block
	B2 *Block
}
