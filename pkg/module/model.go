package module

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphbridge/pkg/ast"
	"github.com/matzehuels/graphbridge/pkg/notification"
)

// Notification tells subscribers what changed in a module.
type Notification int

const (
	// Invalidate means the whole content was replaced.
	Invalidate Notification = iota
	// CodeChanged means the source text changed.
	CodeChanged
	// MetadataChanged means only editor metadata changed.
	MetadataChanged
)

func (n Notification) String() string {
	switch n {
	case Invalidate:
		return "invalidate"
	case CodeChanged:
		return "code_changed"
	case MetadataChanged:
		return "metadata_changed"
	}
	return "unknown"
}

// Model is the single owner of one module's content.
//
// Readers get immutable snapshots from [Model.Read]. Writers go through
// [Model.Update], which applies a function to a private copy and publishes
// the copy only if the function succeeds, all under one lock. Every
// read-modify-write of a module is therefore one critical section, and a
// failed edit is never visible.
type Model struct {
	path   string
	logger *log.Logger

	mu      sync.RWMutex
	content Content

	publisher notification.Publisher[Notification]

	// saveMu orders snapshots written by Registry.Save.
	saveMu sync.Mutex
}

// NewModel creates a model owning content. If logger is nil, log.Default()
// is used.
func NewModel(path string, content Content, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.Default()
	}
	if content.Ast == nil {
		content.Ast = &ast.Module{}
	}
	return &Model{path: path, content: content, logger: logger}
}

// FromCode parses code into a new model.
func FromCode(path, code string, logger *log.Logger) (*Model, error) {
	m, err := ast.Parse(code, nil)
	if err != nil {
		return nil, err
	}
	return NewModel(path, Content{Ast: m}, logger), nil
}

// Path returns the module's path in its store.
func (m *Model) Path() string { return m.path }

// Read returns the current content. The snapshot is shared and must not be
// modified; it stays valid after later updates.
func (m *Model) Read() Content {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.content
}

// Code returns the current source text.
func (m *Model) Code() string {
	return m.Read().Code()
}

// Update applies fn to a copy of the content and, if fn succeeds, makes the
// copy current. Subscribers are told what changed.
func (m *Model) Update(fn func(*Content) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.content.Clone()
	if err := fn(&next); err != nil {
		m.logger.Warn("rejected module update", "module", m.path, "err", err)
		return err
	}

	codeChanged := next.Code() != m.content.Code()
	metaChanged := !next.Metadata.Equal(m.content.Metadata)
	m.content = next

	m.logger.Debug("updated module", "module", m.path, "code", codeChanged, "metadata", metaChanged)
	if codeChanged {
		m.publisher.Publish(CodeChanged)
	}
	if metaChanged {
		m.publisher.Publish(MetadataChanged)
	}
	return nil
}

// ApplyCodeChange replaces the module's code. Nodes whose source span is
// unchanged keep their IDs, and with them their metadata; everything else
// gets a fresh ID. Subscribers receive [Invalidate].
func (m *Model) ApplyCodeChange(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	parsed, err := ast.Parse(code, ast.IDMapOf(m.content.Ast))
	if err != nil {
		m.logger.Warn("rejected code change", "module", m.path, "err", err)
		return err
	}
	m.content = Content{Ast: parsed, Metadata: m.content.Metadata.Clone()}
	m.logger.Debug("replaced module code", "module", m.path)
	m.publisher.Publish(Invalidate)
	return nil
}

// Subscribe returns the stream of changes made after the call.
func (m *Model) Subscribe(ctx context.Context) *notification.Subscription[Notification] {
	return m.publisher.Subscribe(ctx)
}

// Close ends every subscription to the model.
func (m *Model) Close() {
	m.publisher.Close()
}
