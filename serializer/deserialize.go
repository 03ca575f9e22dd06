package serializer

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Deserialize parses a `.mortared` JSON document back into a Mortared
// value, the inverse of Marshal. It performs no schema validation of its
// own — callers that need to reject malformed documents up front should
// call ValidateSchema first.
func Deserialize(data []byte) (*Mortared, error) {
	var m Mortared
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "decode mortared document")
	}
	return &m, nil
}

// DeserializeFile reads and deserializes a `.mortared` file from disk.
func DeserializeFile(path string) (*Mortared, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return Deserialize(data)
}

// FindNode returns the node named name, if present.
func (m *Mortared) FindNode(name string) (*Node, bool) {
	for i := range m.Nodes {
		if m.Nodes[i].Name == name {
			return &m.Nodes[i], true
		}
	}
	return nil, false
}

// FindFunction returns the function declaration named name, if present.
func (m *Mortared) FindFunction(name string) (*Function, bool) {
	for i := range m.Functions {
		if m.Functions[i].Name == name {
			return &m.Functions[i], true
		}
	}
	return nil, false
}

// FindEvent returns the event definition named name, if present.
func (m *Mortared) FindEvent(name string) (*EventDef, bool) {
	for i := range m.Events {
		if m.Events[i].Name == name {
			return &m.Events[i], true
		}
	}
	return nil, false
}

// NodeNames returns every node's name in document order.
func (m *Mortared) NodeNames() []string {
	names := make([]string, 0, len(m.Nodes))
	for _, n := range m.Nodes {
		names = append(names, n.Name)
	}
	return names
}
