package service

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/guttosm/quote-configurator/internal/domain/model"
)

//go:embed fieldsets/default.yaml
var defaultFieldSets []byte

// ErrFieldSetNotFound is returned for an unknown object or field set name.
var ErrFieldSetNotFound = errors.New("field set not found")

// FieldSetProvider serves column and field metadata to configuration sessions.
type FieldSetProvider interface {
	FieldSet(object, name string) ([]model.FieldDescriptor, error)
	FieldsInfo(object string) (model.FieldsInfo, error)
}

type fieldSetFile struct {
	Objects map[string]objectFile `yaml:"objects"`
}

type objectFile struct {
	Fields    []fieldFile         `yaml:"fields"`
	FieldSets map[string][]string `yaml:"field_sets"`
}

type fieldFile struct {
	Path       string `yaml:"path"`
	Label      string `yaml:"label"`
	Type       string `yaml:"type"`
	ReadOnly   bool   `yaml:"read_only"`
	Updateable bool   `yaml:"updateable"`
	Required   bool   `yaml:"required"`
}

// FieldSetLoader holds field metadata parsed from YAML.
type FieldSetLoader struct {
	objects map[string]objectFile
}

// NewFieldSetLoader parses the file at path, or the bundled definition when
// path is empty.
func NewFieldSetLoader(path string) (*FieldSetLoader, error) {
	data := defaultFieldSets
	source := "default"
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("fieldset: read %s: %w", path, err)
		}
		data, source = raw, path
	}
	return ParseFieldSets(data, source)
}

// ParseFieldSets parses a field set document.
func ParseFieldSets(data []byte, source string) (*FieldSetLoader, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("fieldset: %s is empty", source)
	}

	var doc fieldSetFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fieldset: parse %s: %w", source, err)
	}

	for name, obj := range doc.Objects {
		known := make(map[string]struct{}, len(obj.Fields))
		for _, f := range obj.Fields {
			if strings.TrimSpace(f.Path) == "" {
				return nil, fmt.Errorf("fieldset: %s: object %s declares a field without path", source, name)
			}
			known[f.Path] = struct{}{}
		}
		for setName, paths := range obj.FieldSets {
			for _, p := range paths {
				if _, ok := known[p]; !ok {
					return nil, fmt.Errorf("fieldset: %s: %s.%s references unknown field %q", source, name, setName, p)
				}
			}
		}
	}

	return &FieldSetLoader{objects: doc.Objects}, nil
}

// FieldSet returns the ordered columns of a named field set. Fields that are
// not updateable are display-only.
func (l *FieldSetLoader) FieldSet(object, name string) ([]model.FieldDescriptor, error) {
	obj, ok := l.objects[object]
	if !ok {
		return nil, fmt.Errorf("%w: object %s", ErrFieldSetNotFound, object)
	}
	paths, ok := obj.FieldSets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrFieldSetNotFound, object, name)
	}

	byPath := make(map[string]fieldFile, len(obj.Fields))
	for _, f := range obj.Fields {
		byPath[f.Path] = f
	}

	out := make([]model.FieldDescriptor, 0, len(paths))
	for _, p := range paths {
		d := descriptor(byPath[p])
		d.ReadOnly = d.ReadOnly || !d.Updateable
		out = append(out, d)
	}
	return out, nil
}

// FieldsInfo returns every field of the object indexed by path.
func (l *FieldSetLoader) FieldsInfo(object string) (model.FieldsInfo, error) {
	obj, ok := l.objects[object]
	if !ok {
		return nil, fmt.Errorf("%w: object %s", ErrFieldSetNotFound, object)
	}

	info := make(model.FieldsInfo, len(obj.Fields))
	for _, f := range obj.Fields {
		info[f.Path] = descriptor(f)
	}
	return info, nil
}

func descriptor(f fieldFile) model.FieldDescriptor {
	label := f.Label
	if label == "" {
		label = f.Path
	}
	return model.FieldDescriptor{
		Path:       f.Path,
		Label:      label,
		Type:       model.SemanticType(f.Type),
		ReadOnly:   f.ReadOnly,
		Updateable: f.Updateable,
		Required:   f.Required,
	}
}
