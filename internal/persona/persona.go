// ABOUTME: Personas define the voice of a reply: system prompt plus response guidance
// ABOUTME: Built-in friend and coach voices can be overridden from a YAML file
package persona

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Built-in persona names
const (
	Friend = "friend"
	Coach  = "coach"
)

// Persona is a named voice
type Persona struct {
	Name             string `yaml:"name"`
	SystemPrompt     string `yaml:"system_prompt"`
	ResponseGuidance string `yaml:"response_guidance,omitempty"`
}

// Registry resolves personas by name
type Registry struct {
	personas map[string]Persona
}

// Builtins returns a registry holding only the built-in personas
func Builtins() *Registry {
	return &Registry{personas: map[string]Persona{
		Friend: {Name: Friend, SystemPrompt: friendSystemPrompt, ResponseGuidance: friendGuidance},
		Coach:  {Name: Coach, SystemPrompt: coachSystemPrompt, ResponseGuidance: coachGuidance},
	}}
}

type personaFile struct {
	Personas []Persona `yaml:"personas"`
}

// LoadFile returns the built-ins merged with the personas defined in path.
// Entries with a built-in name replace it; an empty path yields the built-ins.
func LoadFile(path string) (*Registry, error) {
	reg := Builtins()
	if path == "" {
		return reg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read personas file: %w", err)
	}

	var file personaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse personas file: %w", err)
	}

	for i, p := range file.Personas {
		p.Name = strings.TrimSpace(strings.ToLower(p.Name))
		if p.Name == "" {
			return nil, fmt.Errorf("persona %d: name is required", i+1)
		}
		if strings.TrimSpace(p.SystemPrompt) == "" {
			return nil, fmt.Errorf("persona %q: system_prompt is required", p.Name)
		}
		reg.personas[p.Name] = p
	}

	return reg, nil
}

// Get returns the named persona, falling back to friend when unknown
func (r *Registry) Get(name string) Persona {
	if p, ok := r.personas[strings.ToLower(name)]; ok {
		return p
	}
	return r.personas[Friend]
}

// Names lists the registered personas, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.personas))
	for name := range r.personas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
