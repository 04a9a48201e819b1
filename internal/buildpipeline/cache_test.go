package buildpipeline

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"amulet/internal/diag"
	"amulet/internal/project"
	"amulet/internal/source"
)

func TestCachedWarningsKeepNotes(t *testing.T) {
	const file source.FileID = 1
	warnings := []diag.Diagnostic{
		{
			Severity: diag.SevWarning,
			Code:     diag.SemaUnreachableCode,
			Message:  "unreachable statement",
			Primary:  source.Span{File: file, Start: 40, End: 48},
			Notes:    []diag.Note{{Span: source.Span{File: file, Start: 30, End: 37}, Msg: "any code following this return is unreachable"}},
		},
		{
			Severity: diag.SevWarning,
			Code:     diag.SemaUnusedBinding,
			Message:  "unused variable 'w'",
			Primary:  source.Span{File: file, Start: 16, End: 17},
		},
	}

	cache, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	var key project.Digest
	key[0] = 1
	require.NoError(t, cache.Put(key, &CacheEntry{Source: "a.am", Warnings: detach(warnings)}))

	entry, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, warnings, attach(entry.Warnings, file))
}

func TestCacheRejectsOtherSchema(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	var key project.Digest
	key[0] = 2
	require.NoError(t, cache.Put(key, &CacheEntry{Source: "a.am"}))

	entry, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, cacheSchemaVersion, entry.Schema)

	entry.Schema = cacheSchemaVersion - 1
	// Put всегда ставит текущую схему, поэтому старую запись пишем напрямую
	data, err := msgpack.Marshal(entry)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cache.pathFor(key), data, 0o600))
	_, ok = cache.Get(key)
	assert.False(t, ok, "entries of an older schema are misses")
}
