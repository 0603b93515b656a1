package unittest

import (
	crand "crypto/rand"
	"math/rand"

	"github.com/onflow/flow-blocksync/model/flow"
)

func IdentifierFixture() flow.Identifier {
	var id flow.Identifier
	_, _ = crand.Read(id[:])
	return id
}

func IdentifierListFixture(n int) []flow.Identifier {
	list := make([]flow.Identifier, n)
	for i := 0; i < n; i++ {
		list[i] = IdentifierFixture()
	}
	return list
}

func SeedFixture(n int) []byte {
	var seed = make([]byte, n)
	_, _ = crand.Read(seed)
	return seed
}

func SignerIndicesFixture(n int) []byte {
	indices := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		indices[i/8] |= 1 << (7 - uint(i%8))
	}
	return indices
}

func QuorumCertificateFixture(opts ...func(*flow.QuorumCertificate)) *flow.QuorumCertificate {
	qc := &flow.QuorumCertificate{
		View:          uint64(rand.Uint32()),
		BlockID:       IdentifierFixture(),
		SignerIndices: SignerIndicesFixture(3),
		SigData:       SeedFixture(32 * 2),
	}
	for _, apply := range opts {
		apply(qc)
	}
	return qc
}

func QCWithBlockID(blockID flow.Identifier) func(*flow.QuorumCertificate) {
	return func(qc *flow.QuorumCertificate) {
		qc.BlockID = blockID
	}
}

func QCWithView(view uint64) func(*flow.QuorumCertificate) {
	return func(qc *flow.QuorumCertificate) {
		qc.View = view
	}
}

// CertifyBlock returns a QC for the given block.
func CertifyBlock(block *flow.Block) *flow.QuorumCertificate {
	return QuorumCertificateFixture(QCWithBlockID(block.ID()), QCWithView(block.View))
}

// BlockFixture returns a block with a random parent.
func BlockFixture(opts ...func(*flow.Block)) *flow.Block {
	block := &flow.Block{
		View:       1 + uint64(rand.Uint32()),
		QC:         QuorumCertificateFixture(),
		ProposerID: IdentifierFixture(),
		Payload:    SeedFixture(16),
	}
	block.QC.View = block.View - 1
	for _, apply := range opts {
		apply(block)
	}
	return block
}

// BlockWithParentFixture returns a block certifying the given parent, one
// view above it.
func BlockWithParentFixture(parent *flow.Block) *flow.Block {
	return BlockFixture(WithParent(parent))
}

func WithParent(parent *flow.Block) func(*flow.Block) {
	return func(block *flow.Block) {
		block.View = parent.View + 1
		block.QC = CertifyBlock(parent)
	}
}

func WithPayload(payload []byte) func(*flow.Block) {
	return func(block *flow.Block) {
		block.Payload = payload
	}
}

// BlockchainFixture returns a chain of the given length, where the first
// block extends the genesis block.
func BlockchainFixture(length int) []*flow.Block {
	blocks := make([]*flow.Block, length)
	parent := flow.Genesis()
	for i := 0; i < length; i++ {
		blocks[i] = BlockWithParentFixture(parent)
		parent = blocks[i]
	}
	return blocks
}

// ChainFixtureFrom returns a chain of the given length extending the given parent.
func ChainFixtureFrom(length int, parent *flow.Block) []*flow.Block {
	blocks := make([]*flow.Block, 0, length)
	for i := 0; i < length; i++ {
		block := BlockWithParentFixture(parent)
		blocks = append(blocks, block)
		parent = block
	}
	return blocks
}
