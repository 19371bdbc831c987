// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jploot/picomaven/internal/syncx"
	"github.com/jploot/picomaven/pkg/checksum"
	"github.com/jploot/picomaven/pkg/coordinate"
	"github.com/jploot/picomaven/pkg/registry/registrytest"
)

func newTask(t *testing.T, root string, dep Dependency, client *registrytest.FakeClient, repos ...string) *Task {
	t.Helper()
	return &Task{
		Dep:      dep,
		Root:     root,
		Repos:    syncx.NewOrderedSet(repos...),
		Registry: &syncx.Registry[*DownloadResult]{},
		Pool:     NewPool(context.Background(), 4),
		Client:   client,
	}
}

func simpleCoordinate() coordinate.Coordinate {
	return coordinate.Coordinate{Group: "com.example", Artifact: "widget", Version: "1.0"}
}

func TestTaskRun_SimpleDownload(t *testing.T) {
	root := t.TempDir()
	client := registrytest.NewFakeClient()
	c := simpleCoordinate()
	client.Serve(coordinate.DirectURL("https://repo1", c, "jar"), []byte("jar-bytes"))

	task := newTask(t, root, Dependency{Coordinate: c}, client, "https://repo1")
	result := task.Run(context.Background())

	if !result.Success {
		t.Fatalf("expected success, got err=%v", result.Err)
	}
	data, err := os.ReadFile(result.LocalPath)
	if err != nil {
		t.Fatalf("reading installed artifact: %v", err)
	}
	if string(data) != "jar-bytes" {
		t.Fatalf("installed artifact contents = %q", data)
	}
}

func TestTaskRun_ChecksumMismatchFails(t *testing.T) {
	root := t.TempDir()
	client := registrytest.NewFakeClient()
	c := simpleCoordinate()
	client.Serve(coordinate.DirectURL("https://repo1", c, "jar"), []byte("jar-bytes"))

	task := newTask(t, root, Dependency{
		Coordinate: c,
		Checksums:  []Checksum{{Algo: checksum.SHA256, Digest: "deadbeef"}},
	}, client, "https://repo1")
	result := task.Run(context.Background())

	if result.Success {
		t.Fatal("expected failure on checksum mismatch")
	}
	var integrityErr *IntegrityError
	if !asIntegrity(result.Err, &integrityErr) {
		t.Fatalf("expected *IntegrityError, got %T (%v)", result.Err, result.Err)
	}
	if _, err := os.Stat(filepath.Join(root, "com", "example", "widget", "1.0")); err == nil {
		t.Fatal("artifact directory should not have been populated after a checksum failure")
	}
}

func TestTaskRun_ChecksumOKWhenNoSidecarPublished(t *testing.T) {
	root := t.TempDir()
	client := registrytest.NewFakeClient()
	c := simpleCoordinate()
	client.Serve(coordinate.DirectURL("https://repo1", c, "jar"), []byte("jar-bytes"))
	// No declared checksum and no sidecar served: every <jarURL>.<algo>
	// lookup 404s, so the artifact is accepted unverified.

	task := newTask(t, root, Dependency{Coordinate: c}, client, "https://repo1")
	result := task.Run(context.Background())

	if !result.Success {
		t.Fatalf("expected success with no checksum available, got err=%v", result.Err)
	}
}

func TestTaskRun_FallsBackAcrossRepositories(t *testing.T) {
	root := t.TempDir()
	client := registrytest.NewFakeClient()
	c := simpleCoordinate()
	// repo1's jar is unreachable (connectivity failure, not 404): the
	// task must still try repo2.
	client.FailWith(coordinate.DirectURL("https://repo1", c, "jar"), errConnRefused)
	client.Serve(coordinate.DirectURL("https://repo2", c, "jar"), []byte("from-repo2"))

	task := newTask(t, root, Dependency{Coordinate: c}, client, "https://repo1", "https://repo2")
	result := task.Run(context.Background())

	if !result.Success {
		t.Fatalf("expected success via fallback repository, got err=%v", result.Err)
	}
	data, _ := os.ReadFile(result.LocalPath)
	if string(data) != "from-repo2" {
		t.Fatalf("installed from wrong repository: %q", data)
	}
}

func TestTaskRun_ExhaustedWhenNoRepositoryHasIt(t *testing.T) {
	root := t.TempDir()
	client := registrytest.NewFakeClient()
	c := simpleCoordinate()
	// Neither repository serves anything: both direct probes 404 and
	// both group-metadata fetches 404.

	task := newTask(t, root, Dependency{Coordinate: c}, client, "https://repo1", "https://repo2")
	result := task.Run(context.Background())

	if result.Success {
		t.Fatal("expected exhaustion failure")
	}
	var exhausted *ExhaustedError
	if !asExhausted(result.Err, &exhausted) {
		t.Fatalf("expected *ExhaustedError, got %T (%v)", result.Err, result.Err)
	}
}

func TestTaskRun_CacheHitAvoidsNetwork(t *testing.T) {
	root := t.TempDir()
	client := registrytest.NewFakeClient()
	c := simpleCoordinate()
	artPath := coordinate.LocalPath(root, c, "jar")
	if err := os.MkdirAll(filepath.Dir(artPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(artPath, []byte("already-there"), 0o644); err != nil {
		t.Fatal(err)
	}

	task := newTask(t, root, Dependency{Coordinate: c, Transitive: true}, client, "https://repo1")
	result := task.Run(context.Background())

	if !result.Success {
		t.Fatalf("expected cache hit success, got err=%v", result.Err)
	}
	if len(client.Calls()) != 0 {
		t.Fatalf("cache hit should not have issued any network calls, got %v", client.Calls())
	}
}

func TestTaskRun_TransitiveExpansionSubstitutesProjectVersion(t *testing.T) {
	root := t.TempDir()
	client := registrytest.NewFakeClient()
	parent := coordinate.Coordinate{Group: "com.example", Artifact: "parent-lib", Version: "2.3"}

	pom := `<project>
		<groupId>com.example</groupId>
		<artifactId>parent-lib</artifactId>
		<version>2.3</version>
		<dependencies>
			<dependency>
				<groupId>${project.groupId}</groupId>
				<artifactId>sibling</artifactId>
				<version>${project.version}</version>
			</dependency>
		</dependencies>
	</project>`
	client.Serve(coordinate.DirectURL("https://repo1", parent, "pom"), []byte(pom))
	client.Serve(coordinate.DirectURL("https://repo1", parent, "jar"), []byte("parent-bytes"))
	siblingCoord := coordinate.Coordinate{Group: "com.example", Artifact: "sibling", Version: "2.3"}
	client.Serve(coordinate.DirectURL("https://repo1", siblingCoord, "jar"), []byte("sibling-bytes"))

	task := newTask(t, root, Dependency{Coordinate: parent, Transitive: true}, client, "https://repo1")
	result := task.Run(context.Background())

	if !result.Success {
		t.Fatalf("expected parent success, got err=%v", result.Err)
	}
	if len(result.Transitive) != 1 || !result.Transitive[0].Success {
		t.Fatalf("expected one successful transitive child, got %+v", result.Transitive)
	}
	if result.Transitive[0].Dependency.Coordinate != siblingCoord {
		t.Fatalf("substituted child coordinate = %+v, want %+v", result.Transitive[0].Dependency.Coordinate, siblingCoord)
	}
}

func TestTaskRun_OptionalFailureIsSwallowed(t *testing.T) {
	root := t.TempDir()
	client := registrytest.NewFakeClient()
	parent := coordinate.Coordinate{Group: "com.example", Artifact: "parent-lib", Version: "1.0"}

	pom := `<project>
		<dependencies>
			<dependency>
				<groupId>com.example</groupId>
				<artifactId>missing-optional</artifactId>
				<version>9.9</version>
				<optional>true</optional>
			</dependency>
		</dependencies>
	</project>`
	client.Serve(coordinate.DirectURL("https://repo1", parent, "pom"), []byte(pom))
	client.Serve(coordinate.DirectURL("https://repo1", parent, "jar"), []byte("parent-bytes"))
	// The optional dependency's jar and metadata are never served: it
	// will exhaust all repositories and fail.

	task := newTask(t, root, Dependency{Coordinate: parent, Transitive: true}, client, "https://repo1")
	result := task.Run(context.Background())

	if !result.Success {
		t.Fatalf("expected parent success despite optional child failure, got err=%v", result.Err)
	}
	if len(result.Transitive) != 0 {
		t.Fatalf("expected optional failure to be swallowed, got %+v", result.Transitive)
	}
}

func TestTaskRun_DeclaredTestScopeIsDropped(t *testing.T) {
	root := t.TempDir()
	client := registrytest.NewFakeClient()
	parent := coordinate.Coordinate{Group: "com.example", Artifact: "parent-lib", Version: "1.0"}

	pom := `<project>
		<dependencies>
			<dependency>
				<groupId>com.example</groupId>
				<artifactId>junit-only</artifactId>
				<version>4.13</version>
				<scope>test</scope>
			</dependency>
		</dependencies>
	</project>`
	client.Serve(coordinate.DirectURL("https://repo1", parent, "pom"), []byte(pom))
	client.Serve(coordinate.DirectURL("https://repo1", parent, "jar"), []byte("parent-bytes"))

	task := newTask(t, root, Dependency{Coordinate: parent, Transitive: true}, client, "https://repo1")
	result := task.Run(context.Background())

	if !result.Success {
		t.Fatalf("expected success, got err=%v", result.Err)
	}
	if len(result.Transitive) != 0 {
		t.Fatalf("test-scoped dependency should have been dropped, got %+v", result.Transitive)
	}
}

var errConnRefused = plainConnRefused{}

type plainConnRefused struct{}

func (plainConnRefused) Error() string { return "connection refused" }

func asIntegrity(err error, target **IntegrityError) bool {
	if e, ok := err.(*IntegrityError); ok {
		*target = e
		return true
	}
	return false
}

func asExhausted(err error, target **ExhaustedError) bool {
	if e, ok := err.(*ExhaustedError); ok {
		*target = e
		return true
	}
	return false
}
