package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/onflow/flow-blocksync/module"
)

// SynchronizerCollector collects metrics of the block synchronizer.
type SynchronizerCollector struct {
	inboundQueueSize    prometheus.Gauge
	inboundBlockDropped prometheus.Counter
	pendingAncestors    prometheus.Gauge
	syncRequestsSent    *prometheus.CounterVec
	blocksDelivered     prometheus.Counter
	pendingBlockDropped prometheus.Counter
	ancestorWaitFailed  prometheus.Counter
	ancestorAbandoned   prometheus.Counter
}

var _ module.SynchronizerMetrics = (*SynchronizerCollector)(nil)

// NewSynchronizerCollector creates the synchronizer metrics and registers
// them with the given registerer.
func NewSynchronizerCollector(registerer prometheus.Registerer) *SynchronizerCollector {
	factory := promauto.With(registerer)

	sc := &SynchronizerCollector{
		inboundQueueSize: factory.NewGauge(prometheus.GaugeOpts{
			Name:      "inbound_queue_size",
			Namespace: namespaceConsensus,
			Subsystem: subsystemSynchronizer,
			Help:      "number of blocks waiting in the inbound queue of the synchronizer",
		}),
		inboundBlockDropped: factory.NewCounter(prometheus.CounterOpts{
			Name:      "inbound_blocks_dropped_total",
			Namespace: namespaceConsensus,
			Subsystem: subsystemSynchronizer,
			Help:      "number of blocks dropped because the inbound queue was full",
		}),
		pendingAncestors: factory.NewGauge(prometheus.GaugeOpts{
			Name:      "pending_ancestors",
			Namespace: namespaceConsensus,
			Subsystem: subsystemSynchronizer,
			Help:      "number of distinct missing ancestors currently being synchronized",
		}),
		syncRequestsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "sync_requests_sent_total",
			Namespace: namespaceConsensus,
			Subsystem: subsystemSynchronizer,
			Help:      "number of sync requests published for missing ancestors",
		}, []string{LabelRequestKind}),
		blocksDelivered: factory.NewCounter(prometheus.CounterOpts{
			Name:      "blocks_delivered_total",
			Namespace: namespaceConsensus,
			Subsystem: subsystemSynchronizer,
			Help:      "number of held back blocks delivered to consensus",
		}),
		pendingBlockDropped: factory.NewCounter(prometheus.CounterOpts{
			Name:      "pending_blocks_dropped_total",
			Namespace: namespaceConsensus,
			Subsystem: subsystemSynchronizer,
			Help:      "number of blocks dropped because the pending ancestor limit was reached",
		}),
		ancestorWaitFailed: factory.NewCounter(prometheus.CounterOpts{
			Name:      "ancestor_wait_failures_total",
			Namespace: namespaceConsensus,
			Subsystem: subsystemSynchronizer,
			Help:      "number of failed waits for a missing ancestor",
		}),
		ancestorAbandoned: factory.NewCounter(prometheus.CounterOpts{
			Name:      "ancestors_abandoned_total",
			Namespace: namespaceConsensus,
			Subsystem: subsystemSynchronizer,
			Help:      "number of missing ancestors given up on after the maximum number of requests",
		}),
	}

	return sc
}

func (sc *SynchronizerCollector) InboundQueueSize(size uint) {
	sc.inboundQueueSize.Set(float64(size))
}

func (sc *SynchronizerCollector) InboundBlockDropped() {
	sc.inboundBlockDropped.Inc()
}

func (sc *SynchronizerCollector) PendingAncestors(count uint) {
	sc.pendingAncestors.Set(float64(count))
}

func (sc *SynchronizerCollector) SyncRequestSent(retry bool) {
	kind := RequestKindInitial
	if retry {
		kind = RequestKindRetry
	}
	sc.syncRequestsSent.WithLabelValues(kind).Inc()
}

func (sc *SynchronizerCollector) BlockDelivered() {
	sc.blocksDelivered.Inc()
}

func (sc *SynchronizerCollector) PendingBlockDropped() {
	sc.pendingBlockDropped.Inc()
}

func (sc *SynchronizerCollector) AncestorWaitFailed() {
	sc.ancestorWaitFailed.Inc()
}

func (sc *SynchronizerCollector) AncestorAbandoned() {
	sc.ancestorAbandoned.Inc()
}
