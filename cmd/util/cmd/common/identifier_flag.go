package common

import (
	"github.com/spf13/pflag"

	"github.com/onflow/flow-blocksync/model/flow"
)

// IdentifierFlag is a command line flag holding a hex encoded identifier.
type IdentifierFlag flow.Identifier

var _ pflag.Value = (*IdentifierFlag)(nil)

func (f *IdentifierFlag) String() string {
	return flow.Identifier(*f).String()
}

func (f *IdentifierFlag) Set(value string) error {
	id, err := flow.HexStringToIdentifier(value)
	if err != nil {
		return err
	}
	*f = IdentifierFlag(id)
	return nil
}

func (f *IdentifierFlag) Type() string {
	return "identifier"
}

// Identifier returns the identifier held by the flag.
func (f *IdentifierFlag) Identifier() flow.Identifier {
	return flow.Identifier(*f)
}
