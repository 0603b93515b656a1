package metrics

import (
	"github.com/onflow/flow-blocksync/module"
)

type NoopCollector struct{}

var _ module.SynchronizerMetrics = (*NoopCollector)(nil)
var _ module.SyncRequestHandlerMetrics = (*NoopCollector)(nil)

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) InboundQueueSize(uint) {}
func (nc *NoopCollector) InboundBlockDropped()  {}
func (nc *NoopCollector) PendingAncestors(uint) {}
func (nc *NoopCollector) SyncRequestSent(bool)  {}
func (nc *NoopCollector) BlockDelivered()       {}
func (nc *NoopCollector) PendingBlockDropped()  {}
func (nc *NoopCollector) AncestorWaitFailed()   {}
func (nc *NoopCollector) AncestorAbandoned()    {}
func (nc *NoopCollector) SyncRequestReceived()  {}
func (nc *NoopCollector) BlockResponseSent()    {}
func (nc *NoopCollector) SyncRequestMissed()    {}
