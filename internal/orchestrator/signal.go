// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import "sync"

// Signal is the single message a job sends when it finishes. A nil Err means success.
type Signal struct {
	Path   string
	ItemID string
	Err    error
}

// signalQueue is an unbounded many-producer, single-consumer queue.
// push never blocks, so a job can always deliver its signal.
type signalQueue struct {
	mu      sync.Mutex
	signals []Signal
}

func (q *signalQueue) push(s Signal) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.signals = append(q.signals, s)
}

// drain removes and returns every queued signal.
func (q *signalQueue) drain() []Signal {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := q.signals
	q.signals = nil

	return s
}
