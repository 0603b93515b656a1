package metrics

const (
	LabelRequestKind = "kind"
	EngineLabel      = "engine"
)

const (
	EngineSynchronizer   = "synchronizer"
	EngineRequestHandler = "sync_request_handler"
)

const (
	RequestKindInitial = "initial"
	RequestKindRetry   = "retry"
)
