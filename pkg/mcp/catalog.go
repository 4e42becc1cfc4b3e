package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tellergo-dev/tellergo/pkg/observability"
)

// ProviderFactory constructs a Provider. Factories run lazily, on the first
// catalog access.
type ProviderFactory func(ctx context.Context) (Provider, error)

// ErrBootstrapFailed is returned when neither the primary nor the fallback
// provider could be constructed. It is fatal: no agents can be built without
// a capability catalog.
var ErrBootstrapFailed = errors.New("capability bootstrap failed")

// Catalog is the process-wide capability handle. It bootstraps lazily on
// first use: the primary provider is tried first, then the fallback. The
// singleflight group guarantees concurrent first-callers share a single
// bootstrap rather than racing two.
type Catalog struct {
	primary  ProviderFactory
	fallback ProviderFactory

	group singleflight.Group

	mu       sync.RWMutex
	provider Provider
	tools    []Tool
}

// NewCatalog creates a catalog over a primary and an optional fallback
// factory.
func NewCatalog(primary, fallback ProviderFactory) *Catalog {
	return &Catalog{primary: primary, fallback: fallback}
}

// Bootstrap initializes the provider and tool cache if not already done.
// Safe to call concurrently; exactly one initialization runs.
func (c *Catalog) Bootstrap(ctx context.Context) error {
	c.mu.RLock()
	ready := c.provider != nil
	c.mu.RUnlock()
	if ready {
		return nil
	}

	_, err, _ := c.group.Do("bootstrap", func() (any, error) {
		// Re-check under the group: a previous flight may have won.
		c.mu.RLock()
		ready := c.provider != nil
		c.mu.RUnlock()
		if ready {
			return nil, nil
		}

		provider, tools, err := c.connect(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.provider = provider
		c.tools = tools
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

func (c *Catalog) connect(ctx context.Context) (Provider, []Tool, error) {
	provider, err := c.primary(ctx)
	if err == nil {
		tools, listErr := provider.ListTools(ctx)
		if listErr == nil {
			log.Printf("capability catalog ready: %d tools (primary)", len(tools))
			return provider, tools, nil
		}
		_ = provider.Close()
		err = listErr
	}
	log.Printf("primary capability provider unavailable: %v", err)

	if c.fallback == nil {
		return nil, nil, fmt.Errorf("%w: primary failed and no fallback configured: %v", ErrBootstrapFailed, err)
	}

	provider, fbErr := c.fallback(ctx)
	if fbErr != nil {
		return nil, nil, fmt.Errorf("%w: primary: %v; fallback: %v", ErrBootstrapFailed, err, fbErr)
	}
	tools, listErr := provider.ListTools(ctx)
	if listErr != nil {
		_ = provider.Close()
		return nil, nil, fmt.Errorf("%w: primary: %v; fallback list: %v", ErrBootstrapFailed, err, listErr)
	}
	log.Printf("capability catalog ready: %d tools (fallback)", len(tools))
	return provider, tools, nil
}

// Tools returns the cached catalog, bootstrapping if necessary.
func (c *Catalog) Tools(ctx context.Context) ([]Tool, error) {
	if err := c.Bootstrap(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tools, nil
}

// CallTool proxies to the bootstrapped provider.
func (c *Catalog) CallTool(ctx context.Context, name string, args Args) (any, error) {
	if err := c.Bootstrap(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	provider := c.provider
	c.mu.RUnlock()

	start := time.Now()
	result, err := provider.CallTool(ctx, name, args)
	status := "ok"
	if err != nil {
		status = "error"
	}
	observability.RecordToolCall(name, status, time.Since(start))
	return result, err
}

// Close shuts down the underlying provider, if bootstrapped.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provider == nil {
		return nil
	}
	err := c.provider.Close()
	c.provider = nil
	c.tools = nil
	return err
}
