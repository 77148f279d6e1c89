package access

import (
	"fmt"
	"sync"
	"time"
)

// Source records where the current capabilities came from.
type Source string

const (
	SourceNone  Source = "none"
	SourceAPI   Source = "api"
	SourceToken Source = "token"
)

// Session is the provider's view of the signed-in user.
type Session struct {
	Capabilities        CapabilitySet
	Source              Source
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsStale reports whether the last two refreshes failed.
func (s Session) IsStale() bool {
	return s.ConsecutiveFailures >= 2
}

// Provider holds the current CapabilitySet for concurrent readers.
type Provider struct {
	mu      sync.RWMutex
	session Session
}

// NewProvider returns a provider seeded with the given capabilities.
func NewProvider(cs CapabilitySet, source Source) *Provider {
	p := &Provider{}
	p.session.Capabilities = cs
	p.session.Source = source
	p.session.LastUpdated = time.Now()
	return p
}

// Update replaces the capabilities. When err is non-nil the previous
// capabilities are kept and the failure is recorded.
func (p *Provider) Update(cs CapabilitySet, source Source, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.session.LastUpdated = time.Now()
	if err != nil {
		p.session.LastError = err
		p.session.ConsecutiveFailures++
		return
	}
	p.session.Capabilities = cs
	p.session.Source = source
	p.session.LastError = nil
	p.session.ConsecutiveFailures = 0
}

// Current returns the capabilities in force right now.
func (p *Provider) Current() CapabilitySet {
	if p == nil {
		return CapabilitySet{}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session.Capabilities
}

// Snapshot returns a copy of the whole session.
func (p *Provider) Snapshot() Session {
	if p == nil {
		return Session{Source: SourceNone}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	snap := p.session
	if p.session.LastError != nil {
		snap.LastError = fmt.Errorf("%w", p.session.LastError)
	}
	if snap.Source == "" {
		snap.Source = SourceNone
	}
	return snap
}
