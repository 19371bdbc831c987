// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package manifest decodes the YAML file format the CLI accepts as an
// alternative to positional coordinate arguments: a repository list
// plus a set of dependencies, each with its own transitivity and
// checksum requirements.
package manifest

import (
	"io"
	"strings"

	"github.com/jploot/picomaven/pkg/checksum"
	"github.com/jploot/picomaven/pkg/coordinate"
	"github.com/jploot/picomaven/pkg/resolve"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Manifest is the decoded form of a resolution request: the repository
// search order and the set of root dependencies to resolve.
type Manifest struct {
	Repositories []string           `yaml:"repositories"`
	Dependencies []DependencyConfig `yaml:"dependencies"`
}

// DependencyConfig is one root dependency entry. Coordinate is the
// "group:artifact:version[:classifier]" form accepted on the command
// line too, so the two input paths share parsing.
type DependencyConfig struct {
	Coordinate string            `yaml:"coordinate"`
	Transitive bool              `yaml:"transitive"`
	Optional   bool              `yaml:"optional"`
	Checksums  map[string]string `yaml:"checksums"`
}

// Decode parses a manifest from r.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}
	return &m, nil
}

// Dependencies converts every DependencyConfig into a resolve.Dependency,
// failing on the first malformed coordinate or unknown checksum
// algorithm.
func (m *Manifest) Dependencies() ([]resolve.Dependency, error) {
	deps := make([]resolve.Dependency, 0, len(m.Dependencies))
	for _, dc := range m.Dependencies {
		coord, err := ParseCoordinate(dc.Coordinate)
		if err != nil {
			return nil, errors.Wrapf(err, "dependency %q", dc.Coordinate)
		}
		var sums []resolve.Checksum
		for algo, digest := range dc.Checksums {
			a := checksum.Algo(strings.ToLower(algo))
			if _, err := checksum.Compute(a, nil); err != nil {
				return nil, errors.Wrapf(err, "dependency %q", dc.Coordinate)
			}
			sums = append(sums, resolve.Checksum{Algo: a, Digest: digest})
		}
		deps = append(deps, resolve.Dependency{
			Coordinate: coord,
			Transitive: dc.Transitive,
			Optional:   dc.Optional,
			Checksums:  sums,
		})
	}
	return deps, nil
}

// ParseCoordinate parses "group:artifact:version[:classifier]".
func ParseCoordinate(s string) (coordinate.Coordinate, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return coordinate.Coordinate{}, errors.Errorf("malformed coordinate %q: want group:artifact:version[:classifier]", s)
	}
	c := coordinate.Coordinate{Group: parts[0], Artifact: parts[1], Version: parts[2]}
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	if err := c.Validate(); err != nil {
		return coordinate.Coordinate{}, err
	}
	return c, nil
}
