package buildpipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amulet/internal/buildpipeline"
	"amulet/internal/diag"
	"amulet/internal/driver"
	"amulet/internal/project"
)

type recorder struct {
	mu     sync.Mutex
	events []buildpipeline.Event
}

func (r *recorder) OnEvent(evt buildpipeline.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) final(file string) buildpipeline.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last buildpipeline.Event
	for _, e := range r.events {
		if e.File == file {
			last = e
		}
	}
	return last
}

func newProject(t *testing.T, files map[string]string) *project.Manifest {
	t.Helper()
	root := t.TempDir()
	for name, src := range files {
		p := filepath.Join(root, "src", name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(src), 0o600))
	}
	manifest := "[package]\nname = \"demo\"\n[build]\nsources = [\"src\"]\njobs = 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, project.ManifestName), []byte(manifest), 0o600))
	m, err := project.Load(filepath.Join(root, project.ManifestName))
	require.NoError(t, err)
	return m
}

func TestBuildAllFiles(t *testing.T) {
	m := newProject(t, map[string]string{
		"a.am":     "fn main() { print(1); }\n",
		"b.am":     "fn main() { let unused = 2; }\n",
		"lib/c.am": "fn helper() -> int { return 3; }\n",
	})
	rec := &recorder{}
	res, err := buildpipeline.Build(context.Background(), &buildpipeline.Request{
		Manifest: m, CompilerVersion: "test", Progress: rec,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Succeeded)
	assert.Zero(t, res.Failed)
	require.Len(t, res.Files, 3)
	assert.Equal(t, "a.am", filepath.Base(res.Files[0].Source), "results follow source order")

	for _, f := range res.Files {
		data, rerr := os.ReadFile(f.Output)
		require.NoError(t, rerr)
		assert.Contains(t, string(data), "; amulet assembly v1")
		assert.Equal(t, buildpipeline.StatusDone, rec.final(f.Source).Status)
	}
	assert.Equal(t, filepath.Join(m.Root, "build", "src", "lib", "c.amasm"), res.Files[2].Output)
	require.Len(t, res.Files[1].Diagnostics, 1)
	assert.Equal(t, diag.SemaUnusedBinding, res.Files[1].Diagnostics[0].Code)
}

func TestBuildAggregatesFailures(t *testing.T) {
	m := newProject(t, map[string]string{
		"good.am":  "fn main() {}\n",
		"name.am":  "fn main() { print(missing); }\n",
		"types.am": "fn main() { let x: int = true; print(x); }\n",
	})
	rec := &recorder{}
	res, err := buildpipeline.Build(context.Background(), &buildpipeline.Request{Manifest: m, Progress: rec})
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
	assert.ErrorIs(t, err, driver.ErrName)
	assert.ErrorIs(t, err, driver.ErrType)
	assert.Contains(t, err.Error(), "src/name.am")

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, buildpipeline.StatusError, rec.final(res.Files[1].Source).Status)
	_, statErr := os.Stat(res.Files[1].Output)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "failed files leave no artifact")
}

func TestBuildUsesCache(t *testing.T) {
	m := newProject(t, map[string]string{
		"a.am": "fn main() { let w = 1; print(2); }\n",
	})
	req := &buildpipeline.Request{Manifest: m, CompilerVersion: "v1"}

	first, err := buildpipeline.Build(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, first.Cached)

	require.NoError(t, os.Remove(first.Files[0].Output))
	second, err := buildpipeline.Build(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Cached)
	assert.True(t, second.Files[0].Cached)
	assert.Equal(t, first.Files[0].Diagnostics[0].Message, second.Files[0].Diagnostics[0].Message)

	a, err := os.ReadFile(second.Files[0].Output)
	require.NoError(t, err)
	assert.Contains(t, string(a), "print")

	req.CompilerVersion = "v2"
	third, err := buildpipeline.Build(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, third.Cached, "a new compiler version misses the cache")

	req.NoCache = true
	fourth, err := buildpipeline.Build(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, fourth.Cached)
}

func TestBuildIdenticalFilesKeepTheirNames(t *testing.T) {
	src := "fn main() { print(1); }\n"
	m := newProject(t, map[string]string{"a.am": src, "b.am": src})
	req := &buildpipeline.Request{Manifest: m, CompilerVersion: "v1", Jobs: 1}

	for round := 0; round < 2; round++ {
		res, err := buildpipeline.Build(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, res.Files, 2)
		for _, f := range res.Files {
			name := filepath.Base(f.Source)
			got, err := os.ReadFile(f.Output)
			require.NoError(t, err)
			assert.Contains(t, string(got), `.source "`+name+`"`, "round %d", round)

			fresh, err := driver.New(f.Source, "", driver.Options{})
			require.NoError(t, err)
			require.NoError(t, fresh.Compile())
			assert.Equal(t, fresh.Contents(), string(got), "round %d: %s", round, name)
		}
	}
}

func TestBuildCancelled(t *testing.T) {
	m := newProject(t, map[string]string{"a.am": "fn main() {}\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := buildpipeline.Build(ctx, &buildpipeline.Request{Manifest: m})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildRejectsEmptyRequest(t *testing.T) {
	_, err := buildpipeline.Build(context.Background(), nil)
	assert.Error(t, err)
}

func TestArtifactCacheRoundTrip(t *testing.T) {
	cache, err := buildpipeline.OpenCache(t.TempDir())
	require.NoError(t, err)
	var key project.Digest
	key[3] = 7

	_, ok := cache.Get(key)
	assert.False(t, ok)

	entry := &buildpipeline.CacheEntry{Source: "a.am", Contents: "; amulet assembly v1\n"}
	require.NoError(t, cache.Put(key, entry))
	got, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, entry.Contents, got.Contents)

	require.NoError(t, cache.Clear())
	_, ok = cache.Get(key)
	assert.False(t, ok)
}
