package rpc

import (
	"fmt"
	"sync"
)

type Registry struct {
	mutex   sync.RWMutex
	clients map[Destination]Client
}

func NewRegistry(clients ...Client) *Registry {
	r := &Registry{clients: make(map[Destination]Client, len(clients))}
	for _, c := range clients {
		r.clients[c.Destination()] = c
	}

	return r
}

func (r *Registry) Register(c Client) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.clients[c.Destination()] = c
}

// Get panics on unknown destinations: every destination is registered at startup.
func (r *Registry) Get(destination Destination) Client {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	c, ok := r.clients[destination]
	if !ok {
		panic(fmt.Errorf("rpc client for %s is not registered", destination))
	}

	return c
}
