package domain

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	m "github.com/mouse-blink/blockscan/internal/model"
)

// revisionTemplateInfo is a descriptor subtype carrying extra payload, the
// way a producing front-end would extend the base descriptor.
type revisionTemplateInfo struct {
	identifier string
	revision   string
}

func (ti *revisionTemplateInfo) Type() string       { return "template.revision" }
func (ti *revisionTemplateInfo) Identifier() string { return ti.identifier }

func (ti *revisionTemplateInfo) Serialize() m.SerializedTemplateInfo {
	return m.SerializedTemplateInfo{
		Type:       ti.Type(),
		Identifier: ti.identifier,
		Data:       []any{ti.revision},
	}
}

func newRevisionConstructor() TemplateInfoConstructor {
	return func(identifier string, data ...any) (TemplateInfo, error) {
		if len(data) != 1 {
			return nil, fmt.Errorf("expected one payload entry, got %d", len(data))
		}

		revision, ok := data[0].(string)
		if !ok {
			return nil, fmt.Errorf("expected string revision, got %T", data[0])
		}

		return &revisionTemplateInfo{identifier: identifier, revision: revision}, nil
	}
}

func TestTemplateInfoFactory_RoundTripsDefaultType(t *testing.T) {
	factory := NewTemplateInfoFactory()

	original := NewFileTemplateInfo("templates/index.html")

	restored, err := factory.FromSerialized(original.Serialize())
	if err != nil {
		t.Fatalf("FromSerialized failed: %v", err)
	}

	if restored.Identifier() != original.Identifier() {
		t.Fatalf("expected identifier %q, got %q", original.Identifier(), restored.Identifier())
	}

	if restored.Type() != TemplateInfoTypeFile {
		t.Fatalf("expected type %q, got %q", TemplateInfoTypeFile, restored.Type())
	}
}

func TestTemplateInfoFactory_RoundTripsSubtypePayload(t *testing.T) {
	factory := NewTemplateInfoFactory()
	factory.Register("template.revision", newRevisionConstructor())

	original := &revisionTemplateInfo{identifier: "templates/home.html", revision: "rev-42"}

	restored, err := factory.FromSerialized(original.Serialize())
	if err != nil {
		t.Fatalf("FromSerialized failed: %v", err)
	}

	if restored.Identifier() != original.Identifier() {
		t.Fatalf("expected identifier %q, got %q", original.Identifier(), restored.Identifier())
	}

	if !reflect.DeepEqual(restored.Serialize(), original.Serialize()) {
		t.Fatalf("expected wire forms to match: %+v vs %+v", restored.Serialize(), original.Serialize())
	}
}

func TestTemplateInfoFactory_UnknownType(t *testing.T) {
	factory := NewTemplateInfoFactory()

	_, err := factory.Create("template.unknown", "whatever")
	if !errors.Is(err, ErrUnknownTemplateType) {
		t.Fatalf("expected ErrUnknownTemplateType, got %v", err)
	}

	_, err = factory.FromSerialized(m.SerializedTemplateInfo{Type: "template.unknown", Identifier: "x"})
	if !errors.Is(err, ErrUnknownTemplateType) {
		t.Fatalf("expected ErrUnknownTemplateType, got %v", err)
	}
}

func TestTemplateInfoFactory_RegisterOverwrites(t *testing.T) {
	factory := NewTemplateInfoFactory()

	factory.Register(TemplateInfoTypeFile, func(identifier string, _ ...any) (TemplateInfo, error) {
		return NewFileTemplateInfo("overridden:" + identifier), nil
	})

	restored, err := factory.Create(TemplateInfoTypeFile, "index.html")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if restored.Identifier() != "overridden:index.html" {
		t.Fatalf("expected later registration to win, got %q", restored.Identifier())
	}
}
