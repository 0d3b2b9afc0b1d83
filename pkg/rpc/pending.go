package rpc

import (
	"sync"
)

type Reply struct {
	Response Response
	Err      error
}

// PendingCalls matches replies to in-flight calls by message id.
type PendingCalls struct {
	mutex sync.Mutex
	calls map[string]chan Reply
}

func NewPendingCalls() *PendingCalls {
	return &PendingCalls{calls: make(map[string]chan Reply)}
}

func (p *PendingCalls) Register(id string) (<-chan Reply, func()) {
	ch := make(chan Reply, 1)

	p.mutex.Lock()
	p.calls[id] = ch
	p.mutex.Unlock()

	return ch, func() {
		p.mutex.Lock()
		delete(p.calls, id)
		p.mutex.Unlock()
	}
}

// Resolve reports false for replies nobody waits for anymore.
func (p *PendingCalls) Resolve(packet ReplyPacket) bool {
	p.mutex.Lock()
	ch, ok := p.calls[packet.ID]
	delete(p.calls, packet.ID)
	p.mutex.Unlock()
	if !ok {
		return false
	}

	if packet.hasError() {
		ch <- Reply{Err: NewRemoteFailure(packet.Err)}
		return true
	}

	ch <- Reply{Response: Response(packet.Response)}
	return true
}

func (p *PendingCalls) FailAll(err error) {
	p.mutex.Lock()
	calls := p.calls
	p.calls = make(map[string]chan Reply)
	p.mutex.Unlock()

	for _, ch := range calls {
		ch <- Reply{Err: err}
	}
}

func (p *PendingCalls) Len() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return len(p.calls)
}
