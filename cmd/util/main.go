package main

import (
	"github.com/onflow/flow-blocksync/cmd/util/cmd"
)

func main() {
	cmd.Execute()
}
