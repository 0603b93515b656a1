package metrics

// Prometheus metric namespaces
const (
	namespaceConsensus = "consensus"
)

// Consensus subsystems
const (
	subsystemSynchronizer   = "synchronizer"
	subsystemRequestHandler = "sync_request_handler"
)
