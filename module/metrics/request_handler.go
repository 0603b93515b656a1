package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/onflow/flow-blocksync/module"
)

type SyncRequestHandlerCollector struct {
	requestsReceived prometheus.Counter
	responsesSent    prometheus.Counter
	requestsMissed   prometheus.Counter
}

var _ module.SyncRequestHandlerMetrics = (*SyncRequestHandlerCollector)(nil)

func NewSyncRequestHandlerCollector(registerer prometheus.Registerer) *SyncRequestHandlerCollector {
	factory := promauto.With(registerer)

	return &SyncRequestHandlerCollector{
		requestsReceived: factory.NewCounter(prometheus.CounterOpts{
			Name:      "requests_received_total",
			Namespace: namespaceConsensus,
			Subsystem: subsystemRequestHandler,
			Help:      "number of sync requests received from other replicas",
		}),
		responsesSent: factory.NewCounter(prometheus.CounterOpts{
			Name:      "responses_sent_total",
			Namespace: namespaceConsensus,
			Subsystem: subsystemRequestHandler,
			Help:      "number of block responses sent to requesting replicas",
		}),
		requestsMissed: factory.NewCounter(prometheus.CounterOpts{
			Name:      "requests_missed_total",
			Namespace: namespaceConsensus,
			Subsystem: subsystemRequestHandler,
			Help:      "number of sync requests for blocks not known locally",
		}),
	}
}

func (hc *SyncRequestHandlerCollector) SyncRequestReceived() {
	hc.requestsReceived.Inc()
}

func (hc *SyncRequestHandlerCollector) BlockResponseSent() {
	hc.responsesSent.Inc()
}

func (hc *SyncRequestHandlerCollector) SyncRequestMissed() {
	hc.requestsMissed.Inc()
}
