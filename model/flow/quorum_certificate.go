package flow

import "bytes"

// QuorumCertificate represents a quorum certificate for a block proposal as
// defined in the HotStuff algorithm. A quorum certificate is a collection of
// votes for a particular block proposal. Valid quorum certificates contain
// signatures from a super-majority of consensus committee members.
type QuorumCertificate struct {
	View    uint64
	BlockID Identifier

	// SignerIndices encodes the HotStuff participants whose vote is included
	// in this QC.
	SignerIndices []byte

	// SigData is the aggregated signature of the voters.
	SigData []byte
}

// genesisQC is the well-known certificate terminating every ancestor walk.
// It certifies no real block.
var genesisQC = QuorumCertificate{}

// GenesisQC returns a copy of the well-known genesis QC sentinel.
func GenesisQC() *QuorumCertificate {
	qc := genesisQC
	return &qc
}

// ID returns the content digest of the QC.
func (qc *QuorumCertificate) ID() Identifier {
	if qc == nil {
		return ZeroID
	}
	return MakeID(qc)
}

// Equals returns true if both QCs carry the same content. Nil and empty byte
// slices are considered equal.
func (qc *QuorumCertificate) Equals(other *QuorumCertificate) bool {
	if qc == nil || other == nil {
		return qc == other
	}
	return qc.View == other.View &&
		qc.BlockID == other.BlockID &&
		bytes.Equal(qc.SignerIndices, other.SignerIndices) &&
		bytes.Equal(qc.SigData, other.SigData)
}

// IsGenesis returns true if the QC is the genesis QC sentinel.
func (qc *QuorumCertificate) IsGenesis() bool {
	return qc.Equals(&genesisQC)
}
