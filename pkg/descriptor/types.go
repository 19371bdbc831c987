// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package descriptor

import "strings"

// GroupMetadata is the decoded form of the artifact-level
// maven-metadata.xml (listing known versions of one group:artifact).
type GroupMetadata struct {
	GroupID     string   `xml:"groupId"`
	ArtifactID  string   `xml:"artifactId"`
	Versions    []string `xml:"versioning>versions>version"`
	LastUpdated string   `xml:"versioning>lastUpdated"`
}

// ArtifactMetadata is the decoded form of the version-level
// maven-metadata.xml, used to resolve a snapshot's timestamped filename.
type ArtifactMetadata struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Snapshot   struct {
		Timestamp   string `xml:"timestamp"`
		BuildNumber string `xml:"buildNumber"`
	} `xml:"versioning>snapshot"`
}

// ResolvedVersion returns the timestamped snapshot version filename
// component (e.g. "1.0-20240101.120000-3" for base version
// "1.0-SNAPSHOT"), or "" if this metadata carries no snapshot info.
func (m ArtifactMetadata) ResolvedVersion() string {
	if m.Snapshot.Timestamp == "" {
		return ""
	}
	base := strings.TrimSuffix(m.Version, "-SNAPSHOT")
	return base + "-" + m.Snapshot.Timestamp + "-" + m.Snapshot.BuildNumber
}

// DeclaredDependency is one <dependency> element of a pom.xml. Group and
// Version may literally be "${project.groupId}"/"${project.version}",
// to be substituted by the caller against the parent coordinate.
type DeclaredDependency struct {
	Group      string `xml:"groupId"`
	Artifact   string `xml:"artifactId"`
	Version    string `xml:"version"`
	Classifier string `xml:"classifier"`
	Scope      string `xml:"scope"`
	Optional   bool   `xml:"optional"`
}

// EffectiveScope returns Scope, treating an absent/empty scope as
// "compile" per the Maven default.
func (d DeclaredDependency) EffectiveScope() string {
	if d.Scope == "" {
		return "compile"
	}
	return d.Scope
}

// Descriptor is the decoded form of a pom.xml relevant to resolving and
// expanding transitive dependencies.
type Descriptor struct {
	Group        string               `xml:"groupId"`
	Artifact     string               `xml:"artifactId"`
	Version      string               `xml:"version"`
	Repositories []string             `xml:"repositories>repository>url"`
	Dependencies []DeclaredDependency `xml:"dependencies>dependency"`
}

// RelevantScopes are the dependency scopes that feed the download graph;
// test, provided, system, and import are dropped.
var RelevantScopes = map[string]bool{
	"compile": true,
	"runtime": true,
}
