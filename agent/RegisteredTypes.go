package agent

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Type represents a specific type of an agent Config.
// Config's with this type can create Agents of the corresponding type.
//
// For example, if a Config has Type EGreedyQLearningTabular, then the
// Config is used to construct tabular Q-learning agents with ε-greedy
// behaviour policies.
type Type string

const (
	// Tabular methods
	EGreedyQLearningTabular Type = "EGreedyQLearning-Tabular"
)

// Registered types with the package. Once a Type has been registered
// with this map, a TypedConfig with that type can be deserialized.
//
// No Type's are registered with this package upon initialization.
// Each separate package is in charge of registering its Type with
// the package separately to avoid circular imports.
var (
	registeredTypes   = make(map[Type]reflect.Type)
	registeredTypesMu sync.RWMutex
)

// Register registers an agent's Type with a concrete Config type so
// that upon deserialization of a TypedConfig, Configs of type
// agentType are deserialized into the concrete type of config.
//
// Register panics if agentType is already registered with a different
// concrete type.
func Register(agentType Type, config Config) {
	registeredTypesMu.Lock()
	defer registeredTypesMu.Unlock()

	ty := reflect.TypeOf(config)
	if prev, ok := registeredTypes[agentType]; ok && prev != ty {
		panic(fmt.Sprintf("register: type %v already registered to %v",
			agentType, prev))
	}
	registeredTypes[agentType] = ty
}

// registered returns the concrete Config type registered to agentType
func registered(agentType Type) (reflect.Type, bool) {
	registeredTypesMu.RLock()
	defer registeredTypesMu.RUnlock()
	ty, ok := registeredTypes[agentType]
	return ty, ok
}

// RegisteredTypes returns all registered Types in sorted order
func RegisteredTypes() []Type {
	registeredTypesMu.RLock()
	defer registeredTypesMu.RUnlock()

	types := make([]Type, 0, len(registeredTypes))
	for t := range registeredTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
