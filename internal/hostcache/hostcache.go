/*
Copyright 2026 The Tibia-QueryManager Authors.
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at
http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package hostcache implements the TTL+LRU host-name resolver wrapper
// used when building responses that embed a remote host's address.
package hostcache

import (
	"net"
	"sync"
	"time"
)

type entry struct {
	hostName   string
	resolved   bool
	addr       [4]byte
	resolveTime time.Time
	occupied   bool
}

// Resolver abstracts the actual DNS lookup so tests can stub it out
// without touching the network.
type Resolver func(hostName string) (net.IP, error)

// Cache is a fixed-capacity, LRU-evicted host name → IPv4 address cache.
// Lookups are case-sensitive on the host name.
type Cache struct {
	mu       sync.Mutex
	entries  []entry
	ttl      time.Duration
	resolve  Resolver
	now      func() time.Time
}

func defaultResolve(hostName string) (net.IP, error) {
	addrs, err := net.LookupIP(hostName)
	if err != nil {
		return nil, err
	}
	for _, a := range addrs {
		if v4 := a.To4(); v4 != nil {
			return v4, nil
		}
	}
	return nil, &net.DNSError{Err: "no A record", Name: hostName}
}

// New creates a cache with the given capacity and entry lifetime.
func New(capacity int, ttl time.Duration) *Cache {
	return &Cache{
		entries: make([]entry, capacity),
		ttl:     ttl,
		resolve: defaultResolve,
		now:     time.Now,
	}
}

// WithResolver overrides the resolution function; intended for tests.
func (c *Cache) WithResolver(r Resolver) *Cache {
	c.resolve = r
	return c
}

// Resolve returns the IPv4 address for hostName, using a cached value if
// still fresh, re-resolving on miss or expiry, and evicting the
// least-recently-used entry if the cache is full. Resolver failures are
// reported but never cached, so a transient lookup failure doesn't pin a
// bad negative result for the full TTL.
func (c *Cache) Resolve(hostName string) (net.IP, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	var lruIdx int
	lruTime := now
	foundFree := -1

	for i := range c.entries {
		e := &c.entries[i]

		if e.occupied && now.Sub(e.resolveTime) >= c.ttl {
			*e = entry{}
		}

		if !e.occupied && foundFree == -1 {
			foundFree = i
		}

		if e.occupied && e.resolveTime.Before(lruTime) {
			lruIdx = i
			lruTime = e.resolveTime
		}

		if e.occupied && e.hostName == hostName {
			e.resolveTime = now
			if e.resolved {
				return net.IP(e.addr[:]), true
			}
			return nil, false
		}
	}

	ip, err := c.resolve(hostName)
	if err != nil {
		return nil, false
	}

	slot := foundFree
	if slot == -1 {
		slot = lruIdx
	}

	var addr [4]byte
	copy(addr[:], ip.To4())
	c.entries[slot] = entry{
		hostName:    hostName,
		resolved:    true,
		addr:        addr,
		resolveTime: now,
		occupied:    true,
	}

	return net.IP(addr[:]), true
}

// Len reports the number of live (occupied) entries, for tests.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.occupied {
			n++
		}
	}
	return n
}
