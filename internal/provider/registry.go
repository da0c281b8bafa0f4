package provider

import (
	"fmt"

	"go.uber.org/zap"
)

// Registry holds every configured provider behind the capability interfaces.
// The pipeline core looks providers up by name or platform and never touches
// provider-specific request shapes.
type Registry struct {
	logger     *zap.Logger
	generators map[string]Generator
	async      map[string]AsyncGenerator
	publishers map[string]Publisher
	notifiers  map[string]Notifier
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		logger:     logger,
		generators: make(map[string]Generator),
		async:      make(map[string]AsyncGenerator),
		publishers: make(map[string]Publisher),
		notifiers:  make(map[string]Notifier),
	}
}

func (r *Registry) RegisterGenerator(g Generator) error {
	name := g.Name()
	if _, exists := r.generators[name]; exists {
		return fmt.Errorf("generator %s already registered", name)
	}
	r.generators[name] = g
	r.logger.Info("Generator registered", zap.String("provider", name))
	return nil
}

func (r *Registry) RegisterAsyncGenerator(g AsyncGenerator) error {
	name := g.Name()
	if _, exists := r.async[name]; exists {
		return fmt.Errorf("async generator %s already registered", name)
	}
	r.async[name] = g
	r.logger.Info("Async generator registered", zap.String("provider", name))
	return nil
}

func (r *Registry) RegisterPublisher(p Publisher) error {
	platform := p.Platform()
	if _, exists := r.publishers[platform]; exists {
		return fmt.Errorf("publisher for platform %s already registered", platform)
	}
	r.publishers[platform] = p
	r.logger.Info("Publisher registered", zap.String("platform", platform))
	return nil
}

func (r *Registry) RegisterNotifier(name string, n Notifier) error {
	if _, exists := r.notifiers[name]; exists {
		return fmt.Errorf("notifier %s already registered", name)
	}
	r.notifiers[name] = n
	r.logger.Info("Notifier registered", zap.String("channel", name))
	return nil
}

func (r *Registry) Generator(name string) (Generator, error) {
	g, exists := r.generators[name]
	if !exists {
		return nil, fmt.Errorf("generator %s not found", name)
	}
	return g, nil
}

func (r *Registry) AsyncGenerator(name string) (AsyncGenerator, error) {
	g, exists := r.async[name]
	if !exists {
		return nil, fmt.Errorf("async generator %s not found", name)
	}
	return g, nil
}

func (r *Registry) Publisher(platform string) (Publisher, error) {
	p, exists := r.publishers[platform]
	if !exists {
		return nil, fmt.Errorf("publisher for platform %s not found", platform)
	}
	return p, nil
}

func (r *Registry) Notifier(name string) (Notifier, error) {
	n, exists := r.notifiers[name]
	if !exists {
		return nil, fmt.Errorf("notifier %s not found", name)
	}
	return n, nil
}

// Platforms lists every platform with a registered publisher.
func (r *Registry) Platforms() []string {
	var platforms []string
	for name := range r.publishers {
		platforms = append(platforms, name)
	}
	return platforms
}
