// Package registry provides registration and lookup of the compilers a qualification can select.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/kyle-williams-1/solrbridge/bridgeerr"
	"github.com/kyle-williams-1/solrbridge/compiler"
	"github.com/kyle-williams-1/solrbridge/config"
	"github.com/kyle-williams-1/solrbridge/factory"
)

// CompilerFactory creates a new compiler instance.
type CompilerFactory func(cfg *config.Config) compiler.Compiler

type registration struct {
	dsl     config.DSLType
	factory CompilerFactory
}

// Registry manages available compilers keyed by DSL type. Lookups ignore case.
type Registry struct {
	mu        sync.RWMutex
	compilers map[string]registration
}

// New creates a new registry with the built-in compilers registered through the factory package.
func New() *Registry {
	r := NewEmpty()
	for _, dsl := range []config.DSLType{config.DSLKinetic, config.DSLSolr, config.DSLRaw} {
		r.RegisterCompiler(dsl, func(cfg *config.Config) compiler.Compiler {
			c, err := factory.CreateCompiler(dsl, cfg)
			if err != nil {
				// unreachable: CreateCompiler knows every built-in DSL
				panic(err)
			}
			return c
		})
	}
	return r
}

// NewEmpty creates a registry with nothing registered.
func NewEmpty() *Registry {
	return &Registry{compilers: make(map[string]registration)}
}

func key(dsl config.DSLType) string {
	return strings.ToLower(strings.TrimSpace(string(dsl)))
}

// RegisterCompiler registers a compiler factory, replacing any previous one for dsl.
func (r *Registry) RegisterCompiler(dsl config.DSLType, create CompilerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compilers[key(dsl)] = registration{dsl: dsl, factory: create}
}

// GetCompiler creates the compiler registered for dsl.
func (r *Registry) GetCompiler(dsl config.DSLType, cfg *config.Config) (compiler.Compiler, error) {
	r.mu.RLock()
	reg, exists := r.compilers[key(dsl)]
	r.mu.RUnlock()
	if !exists {
		return nil, &bridgeerr.UnsupportedQueryTypeError{Type: string(dsl), Valid: r.DescriptorTypes()}
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return reg.factory(cfg), nil
}

// ListCompilers returns all registered DSL types, sorted.
func (r *Registry) ListCompilers() []config.DSLType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]config.DSLType, 0, len(r.compilers))
	for _, reg := range r.compilers {
		types = append(types, reg.dsl)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// DescriptorTypes returns the type names a JSON descriptor may select. The raw
// passthrough is excluded since it applies only to qualifications that are not descriptors.
func (r *Registry) DescriptorTypes() []string {
	var names []string
	for _, dsl := range r.ListCompilers() {
		if key(dsl) == key(config.DSLRaw) {
			continue
		}
		names = append(names, string(dsl))
	}
	return names
}

// Global registry instance
var DefaultRegistry = New()

// RegisterCompiler registers a compiler with the global registry.
func RegisterCompiler(dsl config.DSLType, factory CompilerFactory) {
	DefaultRegistry.RegisterCompiler(dsl, factory)
}
