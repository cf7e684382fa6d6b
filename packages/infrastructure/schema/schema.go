package schema

import (
	"fmt"
	"os"
	"strings"

	"entiq/packages/common/logger"
	"entiq/packages/core/meta"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var schemaLogger = logger.NewSource("SCHEMA", logger.Default)

// Entities are declared in a YAML schema file. The file is the single
// source of truth for tables, collections, indices, unique
// constraints and reference expansion.

type fieldSpec struct {
	Name     string   `yaml:"name" validate:"required"`
	Type     string   `yaml:"type" validate:"required"`
	Required bool     `yaml:"required"`
	Unique   bool     `yaml:"unique"`
	Enum     []string `yaml:"enum"`
	Ref      string   `yaml:"ref"`
}

type entitySpec struct {
	Name   string      `yaml:"name" validate:"required"`
	Fields []fieldSpec `yaml:"fields" validate:"required,min=1,dive"`
}

type schemaSpec struct {
	Entities []entitySpec `yaml:"entities" validate:"required,min=1,dive"`
}

// Provider implements metadata lookups over a loaded schema.
// Entity names resolve case-insensitively, descriptors keep the
// declared casing.
type Provider struct {
	ordered   []*meta.EntityDescriptor
	byName    map[string]*meta.EntityDescriptor
	adjacency map[string][]meta.ChildRef
}

func (p *Provider) Entity(name string) (*meta.EntityDescriptor, bool) {
	ent, ok := p.byName[strings.ToLower(name)]
	return ent, ok
}

func (p *Provider) Entities() []*meta.EntityDescriptor {
	return p.ordered
}

func (p *Provider) ChildrenOf(name string) []meta.ChildRef {
	ent, ok := p.Entity(name)
	if !ok {
		return nil
	}
	return p.adjacency[ent.Name]
}

func Load(path string) (*Provider, error) {
	schemaLogger.Info("Loading entity schema from "+path+"...", nil)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	var spec schemaSpec

	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parsing schema file: %w", err)
	}

	if err := validator.New().Struct(&spec); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	provider, err := build(&spec)
	if err != nil {
		return nil, err
	}

	schemaLogger.Info(
		"Loading entity schema: OK",
		logger.Meta{"entities": len(provider.ordered)},
	)

	return provider, nil
}

func build(spec *schemaSpec) (*Provider, error) {
	provider := &Provider{
		byName: map[string]*meta.EntityDescriptor{},
	}

	for _, es := range spec.Entities {
		key := strings.ToLower(es.Name)
		if _, dup := provider.byName[key]; dup {
			return nil, fmt.Errorf("duplicate entity %q", es.Name)
		}

		ent, err := buildEntity(&es)
		if err != nil {
			return nil, err
		}

		provider.byName[key] = ent
		provider.ordered = append(provider.ordered, ent)
	}

	// References can only be checked once every entity is known.
	for _, ent := range provider.ordered {
		for i := range ent.Fields {
			fd := &ent.Fields[i]
			if fd.Ref == "" {
				continue
			}

			target, ok := provider.byName[strings.ToLower(fd.Ref)]
			if !ok {
				return nil, fmt.Errorf("%s.%s references unknown entity %q", ent.Name, fd.Name, fd.Ref)
			}

			// Keep the declared casing of the target.
			fd.Ref = target.Name
		}
	}

	provider.adjacency = meta.BuildAdjacency(provider.ordered)

	return provider, nil
}

func buildEntity(es *entitySpec) (*meta.EntityDescriptor, error) {
	ent := &meta.EntityDescriptor{Name: es.Name}

	seen := map[string]bool{}

	for _, fs := range es.Fields {
		key := strings.ToLower(fs.Name)
		if seen[key] {
			return nil, fmt.Errorf("%s: duplicate field %q", es.Name, fs.Name)
		}
		seen[key] = true

		fieldType, ok := meta.ParseFieldType(fs.Type)
		if !ok {
			return nil, fmt.Errorf("%s.%s: unknown type %q", es.Name, fs.Name, fs.Type)
		}

		if fs.Ref != "" && fieldType != meta.TypeObjectID {
			return nil, fmt.Errorf("%s.%s: reference fields must be of type ObjectId", es.Name, fs.Name)
		}

		isEnum := len(fs.Enum) > 0
		if isEnum && fieldType != meta.TypeString {
			return nil, fmt.Errorf("%s.%s: enum fields must be of type String", es.Name, fs.Name)
		}

		ent.Fields = append(ent.Fields, meta.FieldDescriptor{
			Name:       fs.Name,
			Type:       fieldType,
			IsEnum:     isEnum,
			EnumValues: fs.Enum,
			IsUnique:   fs.Unique,
			IsRequired: fs.Required,
			Ref:        fs.Ref,
		})
	}

	// Every entity carries an id, declared or not.
	if !seen["id"] {
		ent.Fields = append(
			[]meta.FieldDescriptor{{Name: "id", Type: meta.TypeObjectID}},
			ent.Fields...,
		)
	}

	return ent, nil
}
