package boundary

import (
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/annreg/registry"
)

func cstr(s string) unsafe.Pointer {
	b := append([]byte(s), 0)
	return unsafe.Pointer(&b[0])
}

func floats(values ...float32) (unsafe.Pointer, uintptr) {
	return unsafe.Pointer(&values[0]), uintptr(len(values))
}

func useRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	prev := SetRegistry(r)
	t.Cleanup(func() {
		SetRegistry(prev)
		_ = r.Close()
	})
	return r
}

func TestDecodeString(t *testing.T) {
	s, err := DecodeString(cstr("docs"))
	require.NoError(t, err)
	assert.Equal(t, "docs", s)

	s, err = DecodeString(cstr("a\xffb"))
	require.NoError(t, err)
	assert.Equal(t, "a�b", s)

	s, err = DecodeString(cstr("a\xe2\x82b"))
	require.NoError(t, err)
	assert.Equal(t, "a\uFFFD\uFFFDb", s, "one replacement per invalid byte")

	s, err = DecodeString(cstr("ünïcode"))
	require.NoError(t, err)
	assert.Equal(t, "ünïcode", s)

	_, err = DecodeString(nil)
	assert.Error(t, err)

	exact := make([]byte, MaxNameLen+1)
	for i := range exact[:MaxNameLen] {
		exact[i] = 'x'
	}
	s, err = DecodeString(unsafe.Pointer(&exact[0]))
	require.NoError(t, err)
	assert.Len(t, s, MaxNameLen)

	long := make([]byte, MaxNameLen+2)
	for i := range long[:MaxNameLen+1] {
		long[i] = 'x'
	}
	_, err = DecodeString(unsafe.Pointer(&long[0]))
	assert.Error(t, err)
}

func TestConcreteScenario(t *testing.T) {
	useRegistry(t)
	name := cstr("docs")
	NewIndex(name)

	p, dim := floats(1, 1, 1, 1, 1, 1, 1, 1)
	assert.Equal(t, uintptr(1), Add(name, p, dim))
	p, dim = floats(2, 2, 2, 2, 1, 1, 1, 1)
	assert.Equal(t, uintptr(2), Add(name, p, dim))
	p, dim = floats(0, 0, 0, 0, 1, 1, 1, 1)
	assert.Equal(t, uintptr(3), Add(name, p, dim))
	assert.Equal(t, uintptr(3), Len(name))

	Build(name)
	q, qdim := floats(2, 2, 2, 2, 1, 1, 1, 1)
	results := Search(name, 3, q, qdim)
	require.Len(t, results, 3)
	assert.Equal(t, uint64(1), results[0].ID)
	got := []uint64{results[0].ID, results[1].ID, results[2].ID}
	assert.ElementsMatch(t, []uint64{0, 1, 2}, got)

	assert.Len(t, Search(name, 1, q, qdim), 1)
	assert.Empty(t, Search(name, 0, q, qdim))
}

func TestVectorIsCopied(t *testing.T) {
	r := useRegistry(t)
	name := cstr("copy")
	NewIndex(name)
	values := []float32{1, 0}
	Add(name, unsafe.Pointer(&values[0]), 2)
	values[0], values[1] = 0, 1
	Build(name)

	q, dim := floats(1, 0)
	results := Search(name, 1, q, dim)
	require.Len(t, results, 1)
	assert.InDelta(t, 0, results[0].Score, 1e-6)
	n, err := r.Len("copy")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUnknownNameIsSilent(t *testing.T) {
	useRegistry(t)
	dir := t.TempDir()
	name := cstr("missing")
	p, dim := floats(1, 2)

	assert.Equal(t, uintptr(0), Add(name, p, dim))
	assert.Equal(t, uintptr(0), Len(name))
	Build(name)
	assert.Empty(t, Search(name, 3, p, dim))
	indexPath := filepath.Join(dir, "m.index")
	assert.False(t, Save(name, cstr(indexPath), cstr(filepath.Join(dir, "m.elements"))))
	assert.NoFileExists(t, indexPath)
	assert.False(t, Load(name, cstr(indexPath), cstr(filepath.Join(dir, "m.elements"))))
}

func TestInvalidArguments(t *testing.T) {
	r := useRegistry(t)
	NewIndex(nil)
	NewIndex(cstr(""))
	assert.Empty(t, r.Names())

	name := cstr("a")
	NewIndex(name)
	p, _ := floats(1, 2)
	assert.Equal(t, uintptr(0), Add(name, nil, 2))
	assert.Equal(t, uintptr(0), Add(name, p, 0))
	assert.Equal(t, uintptr(0), Add(nil, p, 2))
	assert.Empty(t, Search(name, 1, nil, 2))
	assert.False(t, Save(name, nil, cstr("x")))
	assert.False(t, Save(name, cstr("x"), cstr("")))
	assert.False(t, Load(name, nil, nil))
	assert.Equal(t, uintptr(0), Len(name))
}

func TestSaveLoad(t *testing.T) {
	useRegistry(t)
	dir := t.TempDir()
	indexPath := cstr(filepath.Join(dir, "docs.index.zst"))
	elementsPath := cstr(filepath.Join(dir, "docs.elements.zst"))
	src := cstr("src")
	NewIndex(src)
	for i := 0; i < 5; i++ {
		p, dim := floats(float32(i), 1, 2)
		Add(src, p, dim)
	}
	Build(src)
	require.True(t, Save(src, indexPath, elementsPath))

	dst := cstr("dst")
	require.True(t, Load(dst, indexPath, elementsPath))
	assert.Equal(t, uintptr(5), Len(dst))
	q, dim := floats(3, 1, 2)
	assert.Equal(t, Search(src, 5, q, dim), Search(dst, 5, q, dim))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.index"), []byte("junk"), 0o644))
	assert.False(t, Load(dst, cstr(filepath.Join(dir, "junk.index")), elementsPath))
	assert.Equal(t, uintptr(5), Len(dst), "failed load keeps the prior index")
}

func TestConfigure(t *testing.T) {
	useRegistry(t)
	path := filepath.Join(t.TempDir(), "annreg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kind: bruteforce\nmetric: euclidean\nlog: {level: error}\n"), 0o644))

	previous := Registry()
	require.True(t, Configure(cstr(path)))
	assert.NotSame(t, previous, Registry())
	assert.Error(t, previous.Create("late"), "replaced registry refuses new indexes")
	assert.Empty(t, previous.Names())

	name := cstr("a")
	NewIndex(name)
	p, dim := floats(1, 1)
	assert.Equal(t, uintptr(1), Add(name, p, dim))

	configured := Registry()
	assert.False(t, Configure(cstr(path)), "refused once indexes exist")
	assert.Same(t, configured, Registry())
	assert.Equal(t, uintptr(1), Len(name))
	assert.False(t, Configure(cstr(filepath.Join(t.TempDir(), "missing.yaml"))))
	assert.False(t, Configure(nil))
}
