package controller

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// Registry keeps one controller per client id. Idle controllers expire after ttl
// and the least recently used are evicted beyond size.
type Registry struct {
	mu      sync.Mutex
	cache   *expirable.LRU[string, *Controller]
	repo    Repository
	advisor Advisor
	logger  *zap.Logger
}

// NewRegistry creates a new Registry
func NewRegistry(repo Repository, advisor Advisor, size int, ttl time.Duration, logger *zap.Logger) *Registry {
	if size <= 0 {
		size = 10000
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}

	onEvict := func(clientID string, _ *Controller) {
		logger.Debug("session controller evicted", zap.String("client_id", clientID))
	}

	return &Registry{
		cache:   expirable.NewLRU[string, *Controller](size, onEvict, ttl),
		repo:    repo,
		advisor: advisor,
		logger:  logger,
	}
}

// Get returns the controller for clientID, creating a guest controller if none exists.
// Every access refreshes the idle timer.
func (r *Registry) Get(clientID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.cache.Get(clientID); ok {
		r.cache.Add(clientID, c)
		return c
	}

	c := New(r.repo, r.advisor, r.logger.With(zap.String("client_id", clientID)))
	r.cache.Add(clientID, c)
	return c
}

// Remove drops the controller for clientID
func (r *Registry) Remove(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Remove(clientID)
}

// Len returns the number of live controllers
func (r *Registry) Len() int {
	return r.cache.Len()
}
