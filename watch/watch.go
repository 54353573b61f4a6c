/*
Package watch broadcasts mutations of avltrees to any number of subscribers.

A broadcaster is attached to a tree configuration and therefore observes all
trees created with it. Publishing is synchronous with respect to the
mutation: a subscriber which does not drain its channel will eventually
block the mutating client.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

Please refer to the LICENSE file for details.
*/
package watch

import (
	"context"
	"errors"

	"github.com/guiguan/caster"
	"github.com/npillmayer/avltree"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'avltree'
func tracer() tracing.Trace {
	return tracing.Select("avltree")
}

// ErrClosed signals that a broadcaster has already been closed.
var ErrClosed = errors.New("watch: broadcaster closed")

// Broadcast installs an observer on cfg which publishes every tree event
// through cast. It has to be called before cfg is used by a tree.
func Broadcast[K avltree.Key, L, N any](cfg *avltree.Config[K, L, N], cast *caster.Caster) {
	cfg.SetObserver(func(e avltree.Event[K]) {
		if !cast.Pub(e) {
			tracer().Debugf("watch: broadcaster closed, dropping %s event for key %v", e.Op, e.Key)
		}
	})
}

// Subscribe returns a channel receiving the tree events published through
// cast. The channel is closed when ctx is done or cast is closed. Events
// pending for a cancelled subscriber are dropped.
func Subscribe[K avltree.Key](ctx context.Context, cast *caster.Caster, capacity uint) (<-chan avltree.Event[K], error) {
	sub, ok := cast.Sub(ctx, capacity)
	if !ok {
		return nil, ErrClosed
	}
	events := make(chan avltree.Event[K], capacity)
	go func() {
		defer close(events)
		for msg := range sub {
			e, ok := msg.(avltree.Event[K])
			if !ok || ctx.Err() != nil {
				continue // keep draining until the broadcaster drops sub
			}
			select {
			case events <- e:
			case <-ctx.Done():
				tracer().Debugf("watch: subscriber gone, dropping %s event for key %v", e.Op, e.Key)
			}
		}
	}()
	return events, nil
}
