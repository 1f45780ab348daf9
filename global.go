package expressions

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/PavelStransky/expressions/ie"
)

// Port is where a Global Context is stored.
type Port interface {
	// Open opens the stored context for reading. If nothing has been stored
	// yet, the error satisfies errors.Is(err, fs.ErrNotExist).
	Open() (io.ReadCloser, error)
	// Create opens the store for writing, replacing its contents once the
	// writer is closed.
	Create() (io.WriteCloser, error)
}

// Global is a handle on the single persisted Global Context.
//
// Every operation is a whole-object read-modify-write: the stored context is
// read if it exists (an empty one otherwise), changed in memory and written
// back in full. Nothing is locked. Two handles changing the context at once
// race, and the last one to write wins; changes made by the other are lost.
type Global struct {
	port    Port
	mode    ie.Mode
	factory ie.Factory
}

// NewGlobal creates a handle storing the context in the given mode. A nil
// factory means Factory().
func NewGlobal(port Port, mode ie.Mode, f ie.Factory) *Global {
	if f == nil {
		f = Factory()
	}
	return &Global{port: port, mode: mode, factory: f}
}

// Load reads the Global Context, or returns an empty context if none has
// been saved.
func (g *Global) Load() (*Context, error) {
	rc, err := g.port.Open()
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("no global context stored")
		return NewContext(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open global context: %w", err)
	}
	defer rc.Close()
	imp, err := ie.NewImport(rc, g.factory)
	if err != nil {
		return nil, fmt.Errorf("failed to read global context: %w", err)
	}
	defer imp.Close()
	x, err := imp.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read global context: %w", err)
	}
	if x == nil {
		return NewContext(), nil
	}
	ctx, ok := x.(*Context)
	if !ok {
		return nil, fmt.Errorf("failed to read global context: %w", &ie.FormatError{Msg: fmt.Sprintf("stored record is %T", x)})
	}
	logger.Debug("loaded global context", zap.Int("vars", ctx.Len()), zap.Stringer("mode", imp.Mode()))
	return ctx, nil
}

// Save replaces the stored Global Context with ctx.
func (g *Global) Save(ctx *Context) error {
	var b bytes.Buffer
	e, err := ie.NewExport(&b, g.mode)
	if err != nil {
		return fmt.Errorf("failed to write global context: %w", err)
	}
	if err := e.Write(ctx); err != nil {
		e.Close()
		return fmt.Errorf("failed to write global context: %w", err)
	}
	if err := e.Close(); err != nil {
		return fmt.Errorf("failed to write global context: %w", err)
	}
	// The port is opened only once the whole context has encoded.
	wc, err := g.port.Create()
	if err != nil {
		return fmt.Errorf("failed to create global context: %w", err)
	}
	if _, err := b.WriteTo(wc); err != nil {
		wc.Close()
		return fmt.Errorf("failed to write global context: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to write global context: %w", err)
	}
	logger.Debug("saved global context", zap.Int("vars", ctx.Len()), zap.Stringer("mode", g.mode))
	return nil
}

// SetVariable sets a variable of the Global Context.
func (g *Global) SetVariable(name string, v Value) error {
	ctx, err := g.Load()
	if err != nil {
		return err
	}
	ctx.SetVariable(name, v)
	return g.Save(ctx)
}

// Variable returns the value of a variable of the Global Context. A missing
// variable is a NameError.
func (g *Global) Variable(name string) (Value, error) {
	ctx, err := g.Load()
	if err != nil {
		return nil, err
	}
	v := ctx.Lookup(name)
	if v == nil {
		return nil, &NameError{Name: name}
	}
	return v, nil
}

// Clear removes the named variables from the Global Context, or all of them
// if no names are given.
func (g *Global) Clear(names ...string) error {
	ctx, err := g.Load()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		ctx.Clear()
	}
	for _, name := range names {
		ctx.ClearVar(name)
	}
	return g.Save(ctx)
}

// FilePort stores the Global Context in a file.
type FilePort string

// Open opens the file.
func (p FilePort) Open() (io.ReadCloser, error) {
	return os.Open(string(p))
}

// Create creates the file and its directory if needed. The previous
// contents are replaced only when the writer closes after writes that all
// succeeded.
func (p FilePort) Create() (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(string(p)), 0o755); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(filepath.Dir(string(p)), "."+filepath.Base(string(p))+".*")
	if err != nil {
		return nil, err
	}
	return &fileWriter{File: f, path: string(p)}, nil
}

// fileWriter writes to a temporary file and renames it over the target on
// Close.
type fileWriter struct {
	*os.File
	path string
	err  error
}

func (w *fileWriter) Write(p []byte) (int, error) {
	n, err := w.File.Write(p)
	if err != nil && w.err == nil {
		w.err = err
	}
	return n, err
}

func (w *fileWriter) Close() error {
	if err := w.File.Close(); err != nil || w.err != nil {
		os.Remove(w.File.Name())
		if err == nil {
			err = w.err
		}
		return err
	}
	if err := os.Rename(w.File.Name(), w.path); err != nil {
		os.Remove(w.File.Name())
		return err
	}
	return nil
}

// MemoryPort stores the Global Context in memory. The zero value is empty
// and ready to use. A MemoryPort is safe for concurrent use; the contents
// are replaced atomically when a writer is closed.
type MemoryPort struct {
	mu   sync.Mutex
	data []byte
	ok   bool
}

func (p *MemoryPort) Open() (io.ReadCloser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(p.data)), nil
}

func (p *MemoryPort) Create() (io.WriteCloser, error) {
	return &memWriter{p: p}, nil
}

// Bytes returns the stored bytes.
func (p *MemoryPort) Bytes() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.data...)
}

type memWriter struct {
	p   *MemoryPort
	buf bytes.Buffer
}

func (w *memWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *memWriter) Close() error {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	w.p.data = w.buf.Bytes()
	w.p.ok = true
	return nil
}

var (
	_ Port = FilePort("")
	_ Port = (*MemoryPort)(nil)
)
