package influx

import "fmt"

// PoolKey identifies the dedicated pool for one application/database
// pair. Routing goes through this typed key rather than synthesized
// string identifiers.
type PoolKey struct {
	Application string
	Database    string
}

// Registry maps databases onto worker pools for one calling application.
//
// It lets multi-tenant deployments isolate write traffic per logical
// database onto dedicated pools without every caller knowing the pool
// topology: databases with no dedicated pool fall back to the default.
//
// Lifecycle: construct and Register at startup, share read-only
// afterwards, Close at shutdown. Registry is not safe for concurrent
// registration; registration must complete before the registry is
// shared with dispatching goroutines.
type Registry struct {
	application string
	defaultPool *Pool
	pools       map[PoolKey]*Pool
}

// NewRegistry creates a registry for the named calling application.
// An empty application name routes everything to the default pool.
func NewRegistry(application string, defaultPool *Pool) *Registry {
	return &Registry{
		application: application,
		defaultPool: defaultPool,
		pools:       make(map[PoolKey]*Pool),
	}
}

// Register routes writes targeting the given database onto a dedicated
// pool. Registrations for an empty database name are ignored; those
// writes always use the default pool.
func (r *Registry) Register(database string, pool *Pool) {
	if database == "" {
		return
	}
	r.pools[PoolKey{Application: r.application, Database: database}] = pool
}

// Resolve returns the pool for the given database, falling back to the
// default pool at the first missing lookup: unknown application, no
// database, or no dedicated entry for the pair.
func (r *Registry) Resolve(database string) *Pool {
	if r.application == "" || database == "" {
		return r.defaultPool
	}
	if p, ok := r.pools[PoolKey{Application: r.application, Database: database}]; ok {
		return p
	}
	return r.defaultPool
}

// Start starts every registered pool, including the default.
func (r *Registry) Start() {
	for _, p := range r.distinctPools() {
		p.Start()
	}
}

// Close closes every registered pool, flushing their queued batches.
func (r *Registry) Close() error {
	for _, p := range r.distinctPools() {
		_ = p.Close()
	}
	return nil
}

// SetOnError installs the callback on every registered pool.
func (r *Registry) SetOnError(callback func(err error)) {
	for _, p := range r.distinctPools() {
		p.SetOnError(callback)
	}
}

// distinctPools returns each pool once, however many keys map to it.
func (r *Registry) distinctPools() []*Pool {
	seen := map[*Pool]bool{}
	var pools []*Pool
	if r.defaultPool != nil {
		seen[r.defaultPool] = true
		pools = append(pools, r.defaultPool)
	}
	for _, p := range r.pools {
		if !seen[p] {
			seen[p] = true
			pools = append(pools, p)
		}
	}
	return pools
}

// PoolName synthesizes the conventional display name for a dedicated
// pool: "<application>_<database>_pool". Purely cosmetic — routing uses
// PoolKey, never this string.
func PoolName(application, database string) string {
	return fmt.Sprintf("%s_%s_pool", application, database)
}
