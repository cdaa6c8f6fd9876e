package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/JonMunkholm/gridview/internal/view"
)

// LoadTimeout bounds a single table load.
var LoadTimeout = 30 * time.Second

var (
	// ErrTableNotFound is returned for a table key that is not registered.
	ErrTableNotFound = errors.New("table not found")

	// ErrSessionNotFound is returned for an unknown or expired session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when the session limit is reached.
	ErrTooManySessions = errors.New("too many sessions")

	// ErrSourceUnavailable is returned by sources without a backing store.
	ErrSourceUnavailable = errors.New("data source unavailable")
)

// Observer receives service events. Implementations must be safe for
// concurrent use.
type Observer interface {
	// ViewComputed is called after every successful view computation.
	ViewComputed(table string, elapsed time.Duration, matched int)
	// TableLoaded is called after a source load, successful or not.
	TableLoaded(table string, elapsed time.Duration, err error)
	// CacheLookup is called for every record lookup.
	CacheLookup(table string, hit bool)
	// SessionsActive is called whenever the number of open sessions changes.
	SessionsActive(n int)
}

type nopObserver struct{}

func (nopObserver) ViewComputed(string, time.Duration, int) {}
func (nopObserver) TableLoaded(string, time.Duration, error) {}
func (nopObserver) CacheLookup(string, bool)                 {}
func (nopObserver) SessionsActive(int)                       {}

// defaultPageSizeOptions are offered when Options.PageSizeOptions is empty.
var defaultPageSizeOptions = []int{5, 10, 25}

// Options configures a Service. Zero values select the defaults.
type Options struct {
	DefaultPageSize int           // Default: view.DefaultPageSize
	PageSizeOptions []int         // Default: 5, 10, 25, minus any above MaxPageSize
	MaxPageSize     int           // Default: 100
	MaxSessions     int           // Default: 1000
	CacheTTL        time.Duration // 0 disables caching
	MaxExports      int           // Concurrent exports. Default: DefaultMaxConcurrentExports
	ExportWait      time.Duration // Wait for an export slot. Default: DefaultExportWait
	Observer        Observer      // Default: no-op
	Now             func() time.Time
}

// Service provides table views over the registered tables.
type Service struct {
	opts    Options
	cache   *recordCache
	exports *ExportLimiter
	obs     Observer
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewService creates a new Service instance.
func NewService(opts Options) (*Service, error) {
	if opts.DefaultPageSize == 0 {
		opts.DefaultPageSize = view.DefaultPageSize
	}
	if opts.MaxPageSize == 0 {
		opts.MaxPageSize = 100
	}
	if len(opts.PageSizeOptions) == 0 {
		// Default sizes above the maximum are dropped, not rejected.
		for _, size := range defaultPageSizeOptions {
			if size <= opts.MaxPageSize {
				opts.PageSizeOptions = append(opts.PageSizeOptions, size)
			}
		}
		if len(opts.PageSizeOptions) == 0 {
			opts.PageSizeOptions = []int{opts.DefaultPageSize}
		}
	}
	if opts.MaxSessions == 0 {
		opts.MaxSessions = 1000
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.DefaultPageSize < 0 || opts.DefaultPageSize > opts.MaxPageSize {
		return nil, fmt.Errorf("default page size %d: %w", opts.DefaultPageSize, view.ErrInvalidPageSize)
	}
	for _, size := range opts.PageSizeOptions {
		if size <= 0 || size > opts.MaxPageSize {
			return nil, fmt.Errorf("page size option %d: %w", size, view.ErrInvalidPageSize)
		}
	}
	opts.PageSizeOptions = slices.Clone(opts.PageSizeOptions)
	slices.Sort(opts.PageSizeOptions)

	return &Service{
		opts:     opts,
		cache:    newRecordCache(opts.CacheTTL, opts.Now),
		exports:  NewExportLimiter(opts.MaxExports, opts.ExportWait),
		obs:      opts.Observer,
		now:      opts.Now,
		sessions: make(map[string]*session),
	}, nil
}

// PageSizeOptions returns the selectable page sizes in ascending order.
func (s *Service) PageSizeOptions() []int { return slices.Clone(s.opts.PageSizeOptions) }

// DefaultPageSize returns the page size used when a request names none.
func (s *Service) DefaultPageSize() int { return s.opts.DefaultPageSize }

// ListTables returns information about all registered tables.
func (s *Service) ListTables() []TableInfo {
	defs := All()
	infos := make([]TableInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// ListTablesByGroup returns tables organized by group.
func (s *Service) ListTablesByGroup() map[string][]TableInfo {
	result := make(map[string][]TableInfo)
	for _, group := range Groups() {
		for _, def := range ByGroup(group) {
			result[group] = append(result[group], def.Info)
		}
	}
	return result
}

// Table returns the definition registered under key.
func (s *Service) Table(key string) (TableDefinition, error) {
	def, ok := Get(key)
	if !ok {
		return TableDefinition{}, fmt.Errorf("%w: %s", ErrTableNotFound, key)
	}
	return def, nil
}

// QueryView computes one view of a table without keeping any state.
func (s *Service) QueryView(ctx context.Context, key string, req ViewRequest) (*ViewResult, error) {
	def, err := s.Table(key)
	if err != nil {
		return nil, err
	}

	engine, err := s.newEngine(def, req)
	if err != nil {
		return nil, err
	}

	rows, err := s.records(ctx, def)
	if err != nil {
		return nil, err
	}
	return s.compute(def, engine, rows)
}

// RefreshTable drops cached rows so the next view reloads from the source.
func (s *Service) RefreshTable(key string) error {
	if _, err := s.Table(key); err != nil {
		return err
	}
	s.cache.invalidate(key)
	return nil
}

// RefreshAll drops every cached table.
func (s *Service) RefreshAll() {
	s.cache.invalidateAll()
}

// newEngine builds an engine for def with req applied.
// Every piece of req is validated; the first invalid one is returned.
func (s *Service) newEngine(def TableDefinition, req ViewRequest) (*view.Engine[Row], error) {
	schema, err := def.Schema()
	if err != nil {
		return nil, err
	}

	size := req.PageSize
	if size == 0 {
		size = s.opts.DefaultPageSize
	}
	if err := s.checkPageSize(size); err != nil {
		return nil, err
	}

	engine, err := view.New(schema, view.WithPageSize(size), view.WithPagination(!req.ShowAll))
	if err != nil {
		return nil, err
	}

	if req.Sort != "" {
		dir, err := view.ParseDirection(req.Dir)
		if err != nil {
			return nil, err
		}
		if err := engine.SetSortDirection(req.Sort, dir); err != nil {
			return nil, err
		}
	}

	for _, col := range sortedKeys(req.Filters) {
		if err := engine.SetFilter(col, req.Filters[col]); err != nil {
			return nil, err
		}
	}

	if err := engine.SetPage(req.Page); err != nil {
		return nil, err
	}
	return engine, nil
}

// checkPageSize rejects sizes the engine would reject plus sizes above the
// configured maximum.
func (s *Service) checkPageSize(size int) error {
	if size <= 0 {
		return &view.PaginationError{Value: size, Err: view.ErrInvalidPageSize}
	}
	if size > s.opts.MaxPageSize {
		return fmt.Errorf("%w %d: exceeds maximum %d", view.ErrInvalidPageSize, size, s.opts.MaxPageSize)
	}
	return nil
}

// records returns the table's rows, from cache when fresh.
func (s *Service) records(ctx context.Context, def TableDefinition) ([]Row, error) {
	key := def.Info.Key

	ctx, cancel := context.WithTimeout(ctx, LoadTimeout)
	defer cancel()

	start := s.now()
	rows, hit, err := s.cache.get(ctx, key, def.Source)
	s.obs.CacheLookup(key, hit)
	if !hit {
		s.obs.TableLoaded(key, s.now().Sub(start), err)
	}
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", key, err)
	}
	return rows, nil
}

// compute runs the engine over rows and packages the result.
func (s *Service) compute(def TableDefinition, engine *view.Engine[Row], rows []Row) (*ViewResult, error) {
	start := s.now()
	v, err := engine.Compute(rows)
	if err != nil {
		return nil, err
	}
	s.obs.ViewComputed(def.Info.Key, s.now().Sub(start), v.TotalFilteredCount)

	return s.result(def, v), nil
}

// result converts a derived view into a ViewResult.
func (s *Service) result(def TableDefinition, v view.DerivedView[Row]) *ViewResult {
	res := &ViewResult{
		Table:     def.Info,
		Columns:   def.Columns(),
		Rows:      v.Items,
		Total:     v.TotalFilteredCount,
		Page:      v.PageIndex,
		PageSize:  v.PageSize,
		PageCount: v.PageCount,
		Paginated: v.Paginated,
		Filters:   map[string]string(v.Filters),
		PageSizes: s.PageSizeOptions(),
	}
	if v.Sort.Active() {
		res.Sort = SortSpec{Column: v.Sort.ColumnID, Dir: v.Sort.Direction.String()}
	}
	if !slices.Contains(res.PageSizes, res.PageSize) {
		res.PageSizes = append(res.PageSizes, res.PageSize)
		slices.Sort(res.PageSizes)
	}
	return res
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
