// =============================================================================
// internal/tools/registry.go - Callable tool registration surface
// =============================================================================
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dnsdiag/dnsdiag/internal/diag"
	"github.com/dnsdiag/dnsdiag/internal/metrics"
)

// Handler executes one tool call with JSON-encoded arguments and returns a
// JSON-serializable result.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Tool is one callable operation with a declared name and argument schema.
// The transport carrying calls over a network is a collaborator of this
// package, not part of it.
type Tool struct {
	Name        string
	Description string
	Schema      map[string]any
	Handle      Handler
}

// Registry holds the registered tools and dispatches invocations.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	log   zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{tools: make(map[string]Tool), log: log}
}

// Register adds a tool; a duplicate name replaces the previous entry.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name] = t
}

// List returns the registered tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Invoke dispatches one tool call and marshals its result. Each invocation
// gets a correlation id for log tracing and is recorded in the metrics.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}

	start := time.Now()
	log := r.log.With().Str("tool", name).Str("correlation_id", uuid.NewString()).Logger()
	log.Debug().RawJSON("args", nonEmpty(args)).Msg("tool invocation")

	result, err := tool.Handle(ctx, args)
	metrics.ObserveInvocation(name, time.Since(start), err)
	if err != nil {
		log.Debug().Err(err).Msg("tool invocation failed")
		return nil, err
	}

	out, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s result: %w", name, err)
	}
	log.Debug().Int("out_size", len(out)).Dur("dur", time.Since(start)).Msg("tool invocation done")
	return out, nil
}

func nonEmpty(args json.RawMessage) []byte {
	if len(args) == 0 {
		return []byte("{}")
	}
	return args
}

type domainArgs struct {
	Dominio string `json:"dominio"`
}

type propagationArgs struct {
	Dominio     string   `json:"dominio"`
	Resolutores []string `json:"resolutores,omitempty"`
}

func domainSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"dominio": map[string]any{"type": "string"}},
		"required":   []string{"dominio"},
	}
}

// RegisterDNSTools exposes the four diagnostic entry points (plus a ping
// probe) as callable tools over the given reporter.
func RegisterDNSTools(r *Registry, rep *diag.Reporter) {
	r.Register(Tool{
		Name:        diag.ToolHealth,
		Description: "Compara respuestas recursivas y autoritativas y aplica heurísticas de salud",
		Schema:      domainSchema(),
		Handle: func(ctx context.Context, args json.RawMessage) (any, error) {
			var a domainArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return rep.Health(ctx, a.Dominio), nil
		},
	})
	r.Register(Tool{
		Name:        diag.ToolMailPolicy,
		Description: "Audita registros MX, SPF y DMARC del dominio",
		Schema:      domainSchema(),
		Handle: func(ctx context.Context, args json.RawMessage) (any, error) {
			var a domainArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return rep.MailPolicy(ctx, a.Dominio), nil
		},
	})
	r.Register(Tool{
		Name:        diag.ToolDNSSEC,
		Description: "Verifica DS, DNSKEY y la firma RRSIG del SOA",
		Schema:      domainSchema(),
		Handle: func(ctx context.Context, args json.RawMessage) (any, error) {
			var a domainArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return rep.DNSSEC(ctx, a.Dominio), nil
		},
	})
	r.Register(Tool{
		Name:        diag.ToolPropagation,
		Description: "Compara respuestas entre resolutores públicos y calcula divergencias",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"dominio":     map[string]any{"type": "string"},
				"resolutores": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"required": []string{"dominio"},
		},
		Handle: func(ctx context.Context, args json.RawMessage) (any, error) {
			var a propagationArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, err
			}
			return rep.Propagation(ctx, a.Dominio, a.Resolutores), nil
		},
	})
	r.Register(Tool{
		Name:        "ping",
		Description: "Prueba de vida del servicio",
		Schema:      map[string]any{"type": "object", "properties": map[string]any{}},
		Handle: func(ctx context.Context, args json.RawMessage) (any, error) {
			return "pong", nil
		},
	})
}
