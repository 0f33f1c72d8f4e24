package agent

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// TypedConfig implements functionality for typing a Config. In this
// way, a Config can explicitly have its type stored so that when
// deserializing the Config, we can deserialize it into its concrete
// type without knowing beforehand or declaring beforehand a variable
// of its concrete type.
type TypedConfig struct {
	Type
	Config
}

// NewTypedConfig types the argument Config and returns it as a
// TypedConfig which explicitly holds its Type.
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (t *TypedConfig) UnmarshalJSON(data []byte) error {
	config, typeName, err := unmarshalConfig(data, "Type", "Config")
	if err != nil {
		return err
	}

	t.Type = typeName
	t.Config = config
	return nil
}

// unmarshalConfig uses reflection to unmarshal a Config into its
// concrete type. Both the Config and its Type are returned.
func unmarshalConfig(data []byte, typeJSONField,
	valueJSONField string) (Config, Type, error) {
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, "", fmt.Errorf("unmarshalConfig: %v", err)
	}

	var typeName Type
	if err := json.Unmarshal(m[typeJSONField], &typeName); err != nil {
		return nil, "", fmt.Errorf("unmarshalConfig: could not decode "+
			"type: %v", err)
	}

	ty, found := registered(typeName)
	if !found {
		return nil, "", fmt.Errorf("unmarshalConfig: agent type %q not "+
			"registered", typeName)
	}

	value := reflect.New(ty)
	if raw, ok := m[valueJSONField]; ok {
		if err := json.Unmarshal(raw, value.Interface()); err != nil {
			return nil, "", fmt.Errorf("unmarshalConfig: could not decode "+
				"%v config: %v", typeName, err)
		}
	}

	return value.Elem().Interface().(Config), typeName, nil
}

// Validate ensures that the TypedConfig holds a valid Config of its Type
func (t TypedConfig) Validate() error {
	if t.Config == nil {
		return fmt.Errorf("validate: no agent config")
	}
	if t.Config.Type() != t.Type {
		return fmt.Errorf("validate: config of type %v labelled %v",
			t.Config.Type(), t.Type)
	}
	return t.Config.Validate()
}
