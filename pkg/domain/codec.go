package domain

import (
	"fmt"
	"strings"
)

const (
	typeSeparator = "|"
	groupTag      = "Group"
)

// DeserializationError reports malformed component text. The target of a
// failed Deserialize is left unchanged.
type DeserializationError struct {
	Type   string
	Reason string
	Err    error
}

func newDeserializationError(typeName, reason string, err error) *DeserializationError {
	return &DeserializationError{Type: typeName, Reason: reason, Err: err}
}

func (e *DeserializationError) Error() string {
	msg := fmt.Sprintf("deserialize %s: %s", e.Type, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeserializationError) Unwrap() error { return e.Err }

func splitTag(data string) (tag, rest string, ok bool) {
	tag, rest, ok = strings.Cut(data, typeSeparator)
	if !ok || tag == "" {
		return "", "", false
	}
	return tag, rest, true
}

// DecodeComponent builds a component from Serialize output, dispatching on
// the leading type tag. Identifiers in the text are kept and ids is advanced
// past them.
func DecodeComponent(data string, ids *IDAllocator) (Component, error) {
	tag, _, ok := splitTag(data)
	if !ok {
		return nil, newDeserializationError("component", "missing type tag", nil)
	}
	var c Component
	switch {
	case tag == groupTag:
		payload, err := parseGroupPayload(data)
		if err != nil {
			return nil, err
		}
		c = NewGroup(ids, payload.Name, payload.OwnsChildren)
	default:
		if kind, ok := ParseDecoratorKind(tag); ok {
			c = NewDecorator(ids, kind, nil)
			break
		}
		species, ok := speciesTable[SpeciesName(tag)]
		if !ok {
			return nil, newDeserializationError(tag, "unknown type", nil)
		}
		c = NewPlant(ids, species)
	}
	if err := c.Deserialize(data); err != nil {
		return nil, err
	}
	return c, nil
}
