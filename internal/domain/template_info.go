package domain

import (
	"fmt"

	m "github.com/mouse-blink/blockscan/internal/model"
)

// TemplateInfoTypeFile is the type tag of the default file-backed descriptor.
const TemplateInfoTypeFile = "template.file"

// TemplateInfo identifies the template under analysis. Subtypes vary by
// producing front-end; they are distinguished by a type tag so the wire
// form can be reconstructed by a consumer that was never compiled against
// the producer (see TemplateInfoFactory).
type TemplateInfo interface {
	// Type returns the registered type tag of this descriptor.
	Type() string

	// Identifier returns the opaque template identifier. No format is
	// imposed here; front-ends choose their own identifier scheme.
	Identifier() string

	// Serialize returns the wire form. Subtypes append their payload to
	// Data and must reverse it in their registered constructor.
	Serialize() m.SerializedTemplateInfo
}

// FileTemplateInfo is the default descriptor for templates addressed by a
// file path.
type FileTemplateInfo struct {
	identifier string
}

// NewFileTemplateInfo creates a descriptor for the given identifier.
func NewFileTemplateInfo(identifier string) *FileTemplateInfo {
	return &FileTemplateInfo{identifier: identifier}
}

// Type returns the file descriptor type tag.
func (ti *FileTemplateInfo) Type() string { return TemplateInfoTypeFile }

// Identifier returns the template identifier.
func (ti *FileTemplateInfo) Identifier() string { return ti.identifier }

// Serialize returns the wire form of this descriptor.
func (ti *FileTemplateInfo) Serialize() m.SerializedTemplateInfo {
	return m.SerializedTemplateInfo{
		Type:       ti.Type(),
		Identifier: ti.identifier,
	}
}

// TemplateInfoConstructor reconstructs a descriptor subtype from its
// identifier and wire payload.
type TemplateInfoConstructor func(identifier string, data ...any) (TemplateInfo, error)

// TemplateInfoFactory maps descriptor type tags to constructors so that
// serialized descriptors can cross a process boundary without the consumer
// knowing every subtype at compile time.
//
// The factory is read-mostly: all Register calls must complete before any
// Create or FromSerialized lookup, and before analyses fan out across
// goroutines. Concurrent lookups are safe once registration is done.
type TemplateInfoFactory struct {
	constructors map[string]TemplateInfoConstructor
}

// NewTemplateInfoFactory creates a factory with the default file descriptor
// type already registered.
func NewTemplateInfoFactory() *TemplateInfoFactory {
	f := &TemplateInfoFactory{constructors: make(map[string]TemplateInfoConstructor)}
	f.Register(TemplateInfoTypeFile, func(identifier string, _ ...any) (TemplateInfo, error) {
		return NewFileTemplateInfo(identifier), nil
	})

	return f
}

// Register associates a type tag with a constructor. Registering the same
// tag again overwrites the previous constructor.
func (f *TemplateInfoFactory) Register(typeTag string, ctor TemplateInfoConstructor) {
	f.constructors[typeTag] = ctor
}

// Create constructs a descriptor of the given registered type.
func (f *TemplateInfoFactory) Create(typeTag, identifier string, data ...any) (TemplateInfo, error) {
	ctor, ok := f.constructors[typeTag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplateType, typeTag)
	}

	return ctor(identifier, data...)
}

// FromSerialized reconstructs a descriptor from its wire form.
func (f *TemplateInfoFactory) FromSerialized(s m.SerializedTemplateInfo) (TemplateInfo, error) {
	return f.Create(s.Type, s.Identifier, s.Data...)
}
