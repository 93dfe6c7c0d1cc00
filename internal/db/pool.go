package db

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/parisxmas/OxiDB/go/oxidb"
)

// Pool is a round-robin set of OxiDB connections backing the blob file
// store. A background ping replaces connections that went away.
type Pool struct {
	host    string
	port    int
	timeout time.Duration

	mu      sync.RWMutex
	clients []*oxidb.Client
	idx     uint64

	stop     chan struct{}
	stopOnce sync.Once
}

// NewPool dials size connections to host:port.
func NewPool(host string, port, size int) (*Pool, error) {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		host:    host,
		port:    port,
		timeout: 5 * time.Second,
		clients: make([]*oxidb.Client, size),
		stop:    make(chan struct{}),
	}
	for i := range p.clients {
		c, err := oxidb.Connect(host, port, p.timeout)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("pool: connect client %d: %w", i, err)
		}
		p.clients[i] = c
	}
	go p.keepalive(10 * time.Second)
	return p, nil
}

// Get returns the next client in round-robin order.
func (p *Pool) Get() *oxidb.Client {
	n := atomic.AddUint64(&p.idx, 1)
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clients[n%uint64(len(p.clients))]
}

// Size is the number of connections.
func (p *Pool) Size() int {
	return len(p.clients)
}

func (p *Pool) reconnect(i int) {
	c, err := oxidb.Connect(p.host, p.port, p.timeout)
	if err != nil {
		log.Printf("Warning: pool: reconnect client %d failed: %v", i, err)
		return
	}
	p.mu.Lock()
	old := p.clients[i]
	p.clients[i] = c
	p.mu.Unlock()
	if old != nil {
		old.Close()
	}
}

func (p *Pool) keepalive(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			for i := range p.clients {
				p.mu.RLock()
				c := p.clients[i]
				p.mu.RUnlock()
				if _, err := c.Ping(); err != nil {
					log.Printf("Warning: pool: client %d ping failed, reconnecting: %v", i, err)
					p.reconnect(i)
				}
			}
		}
	}
}

// Close stops the keepalive loop and closes every connection.
func (p *Pool) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.clients {
		if c != nil {
			c.Close()
		}
	}
}
