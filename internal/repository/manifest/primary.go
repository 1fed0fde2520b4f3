package manifest

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

const (
	keyName                 = "name"
	keyVersion              = "version"
	keyOptionalDependencies = "optionalDependencies"
)

// ErrNoVersion is returned when a manifest has no string version field.
var ErrNoVersion = errors.New("manifest has no version")

// Dependency is one optionalDependencies entry.
type Dependency struct {
	Name       string
	Constraint string
}

// Primary is the primary package manifest. It is the single owner of the
// release version and is passed explicitly between pipeline steps.
type Primary struct {
	doc *Document
}

// ParsePrimary decodes a primary package.json.
func ParsePrimary(data []byte) (*Primary, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}

	return &Primary{doc: doc}, nil
}

// Name returns the package name, or "" when absent.
func (p *Primary) Name() string {
	return p.doc.Get(keyName).String()
}

// Version returns the release version.
func (p *Primary) Version() (string, error) {
	v := p.doc.Get(keyVersion)
	if v.Type != gjson.String || v.Str == "" {
		return "", ErrNoVersion
	}

	return v.Str, nil
}

// SetVersion replaces the release version.
func (p *Primary) SetVersion(v string) error {
	return p.doc.Set(keyVersion, v)
}

// Dependencies returns the optionalDependencies entries in manifest order.
func (p *Primary) Dependencies() ([]Dependency, error) {
	deps := p.doc.Get(keyOptionalDependencies)
	if !deps.Exists() {
		return nil, nil
	}

	if !deps.IsObject() {
		return nil, fmt.Errorf("%s: %w", keyOptionalDependencies, errNotObject)
	}

	var out []Dependency

	deps.ForEach(func(name, constraint gjson.Result) bool {
		out = append(out, Dependency{Name: name.String(), Constraint: constraint.String()})
		return true
	})

	return out, nil
}

// SetConstraints rewrites every existing optionalDependencies value to
// constraint. Entries are neither added nor removed and keep their order.
func (p *Primary) SetConstraints(constraint string) error {
	deps, err := p.Dependencies()
	if err != nil {
		return err
	}

	for _, dep := range deps {
		if err = p.doc.Set(keyOptionalDependencies+"."+Key(dep.Name), constraint); err != nil {
			return err
		}
	}

	return nil
}

// Bytes returns the manifest as it will be written.
func (p *Primary) Bytes() []byte {
	return p.doc.Bytes()
}
