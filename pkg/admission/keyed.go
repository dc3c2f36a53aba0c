package admission

import (
	"context"
	"sync"
)

// Keyed multiplexes independent facades over string keys, such as
// tenant ids or API routes. Each key gets its own facade built from the
// same config, constructed lazily on first use; facades never share
// limiter state across keys.
type Keyed struct {
	mu      sync.RWMutex
	config  Config
	facades map[string]*Facade
}

// NewKeyed creates a keyed facade set. The config is validated up front
// so per-key construction cannot fail later.
func NewKeyed(config Config) (*Keyed, error) {
	probe, err := New(config)
	if err != nil {
		return nil, err
	}
	_ = probe.Close()

	return &Keyed{
		config:  config,
		facades: make(map[string]*Facade),
	}, nil
}

// Get returns the facade for key, constructing it on first use.
func (k *Keyed) Get(key string) *Facade {
	k.mu.RLock()
	f, ok := k.facades[key]
	k.mu.RUnlock()
	if ok {
		return f
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if f, ok := k.facades[key]; ok {
		return f
	}

	config := k.config
	if config.Name == "" {
		config.Name = key
	}
	// The config was validated in NewKeyed, so this cannot fail.
	f, _ = New(config)
	k.facades[key] = f
	return f
}

// Execute submits one unit of work under key's facade.
func (k *Keyed) Execute(ctx context.Context, key string, op Operation) error {
	return k.Get(key).Execute(ctx, op)
}

// Status returns the snapshot for key's facade.
func (k *Keyed) Status(key string) Status {
	return k.Get(key).Status()
}

// Len returns the number of keys with a constructed facade.
func (k *Keyed) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.facades)
}

// Close releases background resources of every constructed facade.
func (k *Keyed) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var firstErr error
	for _, f := range k.facades {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
