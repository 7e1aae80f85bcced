package toolhost

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

// Multi merges the catalogs of several hosts and routes calls by tool name.
// Catalogs are merged in host order, the first host wins on duplicate names.
type Multi struct {
	hosts []Host

	lock   sync.RWMutex
	routes map[string]Host
}

var _ Host = (*Multi)(nil)

// NewMulti returns a host over the given hosts.
func NewMulti(hosts ...Host) *Multi {
	return &Multi{hosts: hosts}
}

// ListTools returns the merged catalog and refreshes the routes.
func (m *Multi) ListTools(ctx context.Context) ([]*Descriptor, error) {
	var list []*Descriptor
	routes := make(map[string]Host)
	for idx, h := range m.hosts {
		tools, err := h.ListTools(ctx)
		if err != nil {
			return nil, errors.WithMessagef(err, "host %d", idx)
		}
		for _, d := range tools {
			if _, exists := routes[d.Name]; exists {
				logger.ContextKV(ctx, xlog.WARNING,
					"reason", "duplicate_tool",
					"tool", d.Name,
					"host", idx,
				)
				continue
			}
			routes[d.Name] = h
			list = append(list, d)
		}
	}

	m.lock.Lock()
	m.routes = routes
	m.lock.Unlock()

	return list, nil
}

// CallTool invokes the tool on the host that listed it first.
// The catalog is fetched if it was not listed yet.
func (m *Multi) CallTool(ctx context.Context, name string, args map[string]any) (*Result, error) {
	m.lock.RLock()
	routes := m.routes
	m.lock.RUnlock()

	if routes == nil {
		if _, err := m.ListTools(ctx); err != nil {
			return nil, err
		}
		m.lock.RLock()
		routes = m.routes
		m.lock.RUnlock()
	}

	h, ok := routes[name]
	if !ok {
		return nil, errors.WithMessagef(ErrToolNotFound, "unknown tool %q", name)
	}
	return h.CallTool(ctx, name, args)
}
