package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/mouse-blink/clientguard/internal/model"
)

func TestLocalSourceFSAdapter_Select(t *testing.T) {
	defaultArgs := func(root string) SelectArgs {
		return SelectArgs{
			Root:         m.Path(root),
			Suffixes:     []string{".ts", ".tsx"},
			ExcludedDirs: []string{"node_modules", ".git"},
		}
	}

	t.Run("keeps matching suffixes sorted", func(t *testing.T) {
		root := t.TempDir()
		mustMkdir(t, filepath.Join(root, "lib"))
		writeTestFile(t, filepath.Join(root, "lib", "db.ts"), "export {}\n")
		writeTestFile(t, filepath.Join(root, "page.tsx"), "export {}\n")
		writeTestFile(t, filepath.Join(root, "app.ts"), "export {}\n")
		writeTestFile(t, filepath.Join(root, "script.js"), "module.exports = {}\n")
		writeTestFile(t, filepath.Join(root, "README.md"), "# readme\n")

		paths, err := NewLocalSourceFSAdapter().Select(defaultArgs(root))
		require.NoError(t, err)

		assert.Equal(t, []m.Path{
			m.Path(filepath.Join(root, "app.ts")),
			m.Path(filepath.Join(root, "lib", "db.ts")),
			m.Path(filepath.Join(root, "page.tsx")),
		}, paths)
	})

	t.Run("skips excluded directories at any depth", func(t *testing.T) {
		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "index.ts"), "export {}\n")
		require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0o755))
		writeTestFile(t, filepath.Join(root, "node_modules", "pkg", "index.ts"), "export {}\n")
		require.NoError(t, os.MkdirAll(filepath.Join(root, "apps", "web", "node_modules"), 0o755))
		writeTestFile(t, filepath.Join(root, "apps", "web", "node_modules", "dep.ts"), "export {}\n")
		writeTestFile(t, filepath.Join(root, "apps", "web", "route.ts"), "export {}\n")
		mustMkdir(t, filepath.Join(root, ".git"))
		writeTestFile(t, filepath.Join(root, ".git", "hook.ts"), "export {}\n")

		paths, err := NewLocalSourceFSAdapter().Select(defaultArgs(root))
		require.NoError(t, err)

		assert.Equal(t, []m.Path{
			m.Path(filepath.Join(root, "apps", "web", "route.ts")),
			m.Path(filepath.Join(root, "index.ts")),
		}, paths)
	})

	t.Run("honours exclude globs", func(t *testing.T) {
		root := t.TempDir()
		mustMkdir(t, filepath.Join(root, "__tests__"))
		writeTestFile(t, filepath.Join(root, "__tests__", "db.test.ts"), "export {}\n")
		writeTestFile(t, filepath.Join(root, "db.ts"), "export {}\n")
		writeTestFile(t, filepath.Join(root, "types.d.ts"), "export {}\n")

		args := defaultArgs(root)
		args.ExcludeGlobs = []string{"__tests__/**", "**/*.d.ts"}

		paths, err := NewLocalSourceFSAdapter().Select(args)
		require.NoError(t, err)

		assert.Equal(t, []m.Path{m.Path(filepath.Join(root, "db.ts"))}, paths)
	})

	t.Run("ignore files are not applied by default", func(t *testing.T) {
		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, ".gitignore"), "generated/\n")
		mustMkdir(t, filepath.Join(root, "generated"))
		writeTestFile(t, filepath.Join(root, "generated", "client.ts"), "export {}\n")

		paths, err := NewLocalSourceFSAdapter().Select(defaultArgs(root))
		require.NoError(t, err)

		assert.Equal(t, []m.Path{m.Path(filepath.Join(root, "generated", "client.ts"))}, paths)
	})

	t.Run("root must be a directory", func(t *testing.T) {
		root := t.TempDir()
		file := filepath.Join(root, "a.ts")
		writeTestFile(t, file, "export {}\n")

		_, err := NewLocalSourceFSAdapter().Select(defaultArgs(file))
		assert.ErrorIs(t, err, ErrNotDirectory)

		_, err = NewLocalSourceFSAdapter().Select(defaultArgs(filepath.Join(root, "missing")))
		assert.Error(t, err)
	})

	t.Run("invalid glob", func(t *testing.T) {
		args := defaultArgs(t.TempDir())
		args.ExcludeGlobs = []string{"[unterminated"}

		_, err := NewLocalSourceFSAdapter().Select(args)
		assert.Error(t, err)
	})
}

func TestLocalSourceFSAdapter_ReadWriteFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "db.ts")
	writeTestFile(t, path, "export {}\n")

	got, err := adapter.ReadFile(m.Path(path))
	require.NoError(t, err)
	assert.Equal(t, "export {}\n", string(got))

	require.NoError(t, adapter.WriteFile(m.Path(path), []byte("changed"), 0o600))

	info, err := adapter.FileInfo(m.Path(path))
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.Equal(t, "changed", string(readFileBytes(t, path)))

	_, err = adapter.ReadFile(m.Path(filepath.Join(root, "missing.ts")))
	assert.Error(t, err)
}

func TestLocalSourceFSAdapter_RelPath(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	rel, err := adapter.RelPath("/repo", "/repo/app/page.tsx")
	require.NoError(t, err)
	assert.Equal(t, m.Path(filepath.Join("app", "page.tsx")), rel)
}

func TestInExcludedDir(t *testing.T) {
	excluded := []string{"node_modules", ".git"}

	assert.True(t, inExcludedDir("node_modules/a.ts", excluded))
	assert.True(t, inExcludedDir("apps/x/.git/a.ts", excluded))
	assert.False(t, inExcludedDir("node_modules.ts", excluded))
	assert.False(t, inExcludedDir("src/node_modules_helper/a.ts", excluded))
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("failed to create dir %s: %v", path, err)
	}
}

func readFileBytes(t *testing.T, path string) []byte {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	return content
}
