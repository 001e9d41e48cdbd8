package module

import (
	"context"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/graphbridge/pkg/errors"
)

// Store persists serialized modules by path. Implementations live in
// pkg/module/store. Load reports a missing module with
// errs.ErrCodeModuleNotFound.
type Store interface {
	Load(ctx context.Context, path string) ([]byte, error)
	Save(ctx context.Context, path string, data []byte) error
	List(ctx context.Context) ([]string, error)
	Close() error
}

// Registry hands out one [Model] per module path, loading it from a Store
// on first use. All handles for a path share that model.
type Registry struct {
	store  Store
	logger *log.Logger

	mu     sync.Mutex
	models map[string]*Model
}

// NewRegistry creates a registry over store. If logger is nil, log.Default()
// is used.
func NewRegistry(store Store, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{store: store, logger: logger, models: make(map[string]*Model)}
}

// Open returns the model of the module at path, loading it if needed.
// The registry lock is not held while the store loads, so a slow module
// never delays modules that are already open.
func (r *Registry) Open(ctx context.Context, path string) (*Model, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}

	r.mu.Lock()
	m, ok := r.models[path]
	r.mu.Unlock()
	if ok {
		return m, nil
	}

	data, err := r.store.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	content, err := Unmarshal(data)
	if err != nil {
		return nil, errs.Wrap(errs.GetCode(err), err, "load module %s", path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another caller may have opened or created the module meanwhile.
	if m, ok := r.models[path]; ok {
		return m, nil
	}
	m = NewModel(path, content, r.logger)
	r.models[path] = m
	r.logger.Debug("opened module", "module", path, "bytes", len(data))
	return m, nil
}

// SetCode replaces the code of the module at path, creating the module if
// it does not exist, and saves it. Subscribers of an open module receive
// [Invalidate].
func (r *Registry) SetCode(ctx context.Context, path, code string) (*Model, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}

	r.mu.Lock()
	m, ok := r.models[path]
	if ok {
		r.mu.Unlock()
		if err := m.ApplyCodeChange(code); err != nil {
			return nil, err
		}
	} else {
		var err error
		m, err = FromCode(path, code, r.logger)
		if err != nil {
			r.mu.Unlock()
			return nil, err
		}
		r.models[path] = m
		r.mu.Unlock()
	}

	if err := r.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Save writes the model's current content to the store. Saves of one model
// are serialized and each takes its snapshot inside that section, so the
// store always ends up with the newest content.
func (r *Registry) Save(ctx context.Context, m *Model) error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	data, err := Marshal(m.Read())
	if err != nil {
		return err
	}
	if err := r.store.Save(ctx, m.Path(), data); err != nil {
		return err
	}
	r.logger.Debug("saved module", "module", m.Path(), "bytes", len(data))
	return nil
}

// List returns the paths of all stored modules, sorted.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	paths, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Close ends every subscription to open models and closes the store.
func (r *Registry) Close() error {
	r.mu.Lock()
	models := r.models
	r.models = make(map[string]*Model)
	r.mu.Unlock()

	for _, m := range models {
		m.Close()
	}
	return r.store.Close()
}
