package module

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
)

// Compiler turns WebAssembly payloads into resident modules. All modules it
// compiles share one wazero runtime, which lives as long as the Compiler.
type Compiler struct {
	runtime wazero.Runtime
	logger  *zap.Logger
}

type compilerOptions struct {
	interpreter bool
	logger      *zap.Logger
}

type CompilerOption func(*compilerOptions)

// WithInterpreter selects wazero's interpreter instead of the optimizing
// compiler. Compilation is much faster, which suits tests and CLI probes.
func WithInterpreter() CompilerOption {
	return func(o *compilerOptions) {
		o.interpreter = true
	}
}

func WithCompilerLogger(logger *zap.Logger) CompilerOption {
	return func(o *compilerOptions) {
		o.logger = logger
	}
}

func NewCompiler(ctx context.Context, opts ...CompilerOption) *Compiler {
	o := compilerOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := wazero.NewRuntimeConfig()
	if o.interpreter {
		cfg = wazero.NewRuntimeConfigInterpreter()
	}
	// Custom sections are the resource table of a compiled module.
	cfg = cfg.WithCustomSections(true)

	return &Compiler{
		runtime: wazero.NewRuntimeWithConfig(ctx, cfg),
		logger:  o.logger,
	}
}

// Load compiles payload into a module named name.
func (c *Compiler) Load(ctx context.Context, name string, payload []byte) (Module, error) {
	if len(payload) == 0 {
		return nil, errors.New("module: empty payload")
	}

	compiled, err := c.runtime.CompileModule(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("module: compile %s: %w", name, err)
	}

	m := &Wasm{
		name:     name,
		digest:   Digest(payload),
		compiled: compiled,
		sections: make(map[string][]byte),
	}
	for _, section := range compiled.CustomSections() {
		// The first section with a given name wins, matching lookup order
		// in the binary.
		if _, dup := m.sections[section.Name()]; dup {
			continue
		}
		m.sections[section.Name()] = section.Data()
	}

	c.logger.Debug("compiled module payload",
		zap.String("module", name),
		zap.String("digest", m.digest),
		zap.Int("size", len(payload)),
		zap.Int("resources", len(m.sections)),
	)
	return m, nil
}

// Close releases the runtime and every module compiled by it.
func (c *Compiler) Close(ctx context.Context) error {
	return c.runtime.Close(ctx)
}

// Wasm is a compiled WebAssembly module. Its custom sections form its
// resource table, so a resolved module can carry further payloads.
type Wasm struct {
	name     string
	digest   string
	compiled wazero.CompiledModule
	sections map[string][]byte
}

func (m *Wasm) Name() string {
	return m.name
}

// Digest returns the content hash of the payload the module was compiled
// from.
func (m *Wasm) Digest() string {
	return m.digest
}

func (m *Wasm) Resource(key string) ([]byte, error) {
	data, ok := m.sections[key]
	if !ok {
		return nil, fmt.Errorf("module %s: resource %q: %w", m.name, key, fs.ErrNotExist)
	}
	return data, nil
}

// Compiled exposes the wazero module for instantiation by the host.
func (m *Wasm) Compiled() wazero.CompiledModule {
	return m.compiled
}

// Exports returns the exported function names in sorted order.
func (m *Wasm) Exports() []string {
	defs := m.compiled.ExportedFunctions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
