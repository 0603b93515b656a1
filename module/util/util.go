package util

import (
	"github.com/onflow/flow-blocksync/module"
)

// AllReady returns a channel that closes once every given component is ready.
func AllReady(components ...module.ReadyDoneAware) <-chan struct{} {
	channels := make([]<-chan struct{}, 0, len(components))
	for _, c := range components {
		channels = append(channels, c.Ready())
	}
	return AllClosed(channels...)
}

// AllDone returns a channel that closes once every given component is done.
func AllDone(components ...module.ReadyDoneAware) <-chan struct{} {
	channels := make([]<-chan struct{}, 0, len(components))
	for _, c := range components {
		channels = append(channels, c.Done())
	}
	return AllClosed(channels...)
}

// AllClosed returns a channel that closes once every given channel is closed.
func AllClosed(channels ...<-chan struct{}) <-chan struct{} {
	all := make(chan struct{})
	go func() {
		for _, ch := range channels {
			<-ch
		}
		close(all)
	}()
	return all
}

// WaitError blocks until an error arrives on errChan or done closes. An error
// that is already pending when done closes is still returned, since a thrown
// error usually causes done to close.
func WaitError(errChan <-chan error, done <-chan struct{}) error {
	select {
	case err := <-errChan:
		return err
	case <-done:
	}
	select {
	case err := <-errChan:
		return err
	default:
		return nil
	}
}
