// Package replay drives the routed counter against an in-memory window from
// a YAML script of browser actions, recording what each step delivered.
package replay

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Action is one kind of script step.
type Action string

const (
	// ActionLoad fires the window's load event.
	ActionLoad Action = "load"
	// ActionBack moves one entry back, dispatching pop-state.
	ActionBack Action = "back"
	// ActionForward moves one entry forward, dispatching pop-state.
	ActionForward Action = "forward"
	// ActionNavigate follows a fragment link: a new entry plus pop-state.
	ActionNavigate Action = "navigate"
	// ActionPush writes a history entry through the app; the routed
	// message is returned, not delivered.
	ActionPush Action = "push"
	// ActionHash changes the location without any event.
	ActionHash Action = "hash"
	// ActionDestroy tears the app down without an explicit cancel.
	ActionDestroy Action = "destroy"
)

var aliases = map[string]Action{
	"load":     ActionLoad,
	"pop":      ActionBack,
	"back":     ActionBack,
	"forward":  ActionForward,
	"navigate": ActionNavigate,
	"go":       ActionNavigate,
	"push":     ActionPush,
	"hash":     ActionHash,
	"set":      ActionHash,
	"destroy":  ActionDestroy,
}

func (a Action) needsArg() bool {
	switch a {
	case ActionNavigate, ActionPush, ActionHash:
		return true
	default:
		return false
	}
}

// Step is one scripted action. In YAML it is either a bare action name
// ("load") or a single-key mapping ("push: '#increment'").
type Step struct {
	Action Action
	Arg    string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	var name, arg string

	switch value.Kind {
	case yaml.ScalarNode:
		name = value.Value
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("line %d: step must have exactly one action", value.Line)
		}
		name = value.Content[0].Value
		if value.Content[1].Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: argument to %q must be a string", value.Line, name)
		}
		arg = value.Content[1].Value
	default:
		return fmt.Errorf("line %d: step must be an action name or a single-key mapping", value.Line)
	}

	action, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return fmt.Errorf("line %d: unknown action %q", value.Line, name)
	}
	if action.needsArg() && arg == "" {
		return fmt.Errorf("line %d: %s needs an argument", value.Line, action)
	}

	s.Action = action
	s.Arg = arg
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Step) MarshalYAML() (any, error) {
	if s.Arg == "" {
		return string(s.Action), nil
	}
	return map[string]string{string(s.Action): s.Arg}, nil
}

func (s Step) String() string {
	if s.Arg == "" {
		return string(s.Action)
	}
	return fmt.Sprintf("%s %s", s.Action, s.Arg)
}

// Script is a replay file.
type Script struct {
	StartURL string            `yaml:"start_url,omitempty"`
	Routes   map[string]string `yaml:"routes,omitempty"`
	Steps    []Step            `yaml:"steps"`
}

// Parse decodes a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse replay script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("replay script has no steps")
	}
	return &s, nil
}

// LoadFile reads and decodes a script from path.
func LoadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read replay script: %w", err)
	}
	return Parse(data)
}
