package workspace

import (
	"context"
	"log/slog"
	"sync"

	"dharmabot/internal/domain/services"
	domainllm "dharmabot/internal/domain/services/llm"
)

// Registry keeps one Workspace per user for the life of the process.
type Registry struct {
	gateway domainllm.Gateway
	repos   Repositories
	logger  *slog.Logger
	opts    []Option

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

var _ services.WorkspaceRegistry = (*Registry)(nil)

// NewRegistry creates an empty registry. opts apply to every workspace it creates.
func NewRegistry(gateway domainllm.Gateway, repos Repositories, logger *slog.Logger, opts ...Option) *Registry {
	return &Registry{
		gateway:    gateway,
		repos:      repos,
		logger:     logger,
		opts:       opts,
		workspaces: make(map[string]*Workspace),
	}
}

// Get returns the user's workspace, loading it from storage on first use.
func (r *Registry) Get(ctx context.Context, userID string) (services.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ws, ok := r.workspaces[userID]; ok {
		return ws, nil
	}

	ws := New(userID, r.gateway, r.repos, r.logger, r.opts...)
	if err := ws.Load(ctx); err != nil {
		return nil, err
	}
	r.workspaces[userID] = ws
	return ws, nil
}

// Evict forgets the user's workspace. In-flight calls finish against the
// old instance.
func (r *Registry) Evict(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workspaces, userID)
}
