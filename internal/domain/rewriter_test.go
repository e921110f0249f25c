package domain

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mouse-blink/clientguard/internal/adapter"
	m "github.com/mouse-blink/clientguard/internal/model"
)

func newTestRewriter(fsAdapter adapter.SourceFSAdapter) Rewriter {
	return NewRewriter(fsAdapter, RewriterOptions{
		Trigger:     "supabase.",
		Guard:       testGuard,
		FactoryName: "getSupabaseClient",
	})
}

func TestRewriteLines_SingleFunction(t *testing.T) {
	rw := newTestRewriter(nil)

	result := rw.RewriteLines("load.ts", []string{
		"function load() {",
		"  return supabase.from('t').select()",
		"}",
	})

	assert.True(t, result.Changed)
	assert.Equal(t, 1, result.Usages)
	assert.Equal(t, []string{
		"function load() {",
		"    const supabase = getSupabaseClient()",
		"  return supabase.from('t').select()",
		"}",
	}, result.After)
	assert.Equal(t, []m.Insertion{{At: 1, Text: testGuard, Scope: 0}}, result.Insertions)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, m.DiagnosticMissingImport, result.Diagnostics[0].Kind)
}

func TestRewriteLines_SecondPassIsIdentical(t *testing.T) {
	rw := newTestRewriter(nil)

	first := rw.RewriteLines("load.ts", []string{
		"function load() {",
		"  return supabase.from('t').select()",
		"}",
	})
	second := rw.RewriteLines("load.ts", first.After)

	assert.False(t, second.Changed)
	assert.Empty(t, second.Insertions)
	assert.Empty(t, second.Diagnostics)
	assert.Equal(t, first.After, second.After)
}

func TestRewriteLines_TwoUsagesOneGuard(t *testing.T) {
	rw := newTestRewriter(nil)

	result := rw.RewriteLines("load.ts", []string{
		"async function load() {",
		"  const a = await supabase.from('a').select()",
		"  const b = await supabase.from('b').select()",
		"  return [a, b]",
		"}",
	})

	assert.Equal(t, 2, result.Usages)
	require.Len(t, result.Insertions, 1)
	assert.Equal(t, 1, strings.Count(strings.Join(result.After, "\n"), strings.TrimSpace(testGuard)))
	assert.Equal(t, testGuard, result.After[1])
}

func TestRewriteLines_SeveralFunctionsKeepPositions(t *testing.T) {
	rw := newTestRewriter(nil)

	result := rw.RewriteLines("api.ts", []string{
		"import { getSupabaseClient } from '@/lib/supabase'",
		"",
		"export async function GET() {",
		"  return supabase.from('a').select()",
		"}",
		"",
		"export const POST = async (req: Request) => {",
		"  const body = await req.json()",
		"  return supabase.from('a').insert(body)",
		"}",
		"",
		"const remove = async id => {",
		"  return supabase.from('a').delete().eq('id', id)",
		"}",
	})

	assert.Equal(t, []string{
		"import { getSupabaseClient } from '@/lib/supabase'",
		"",
		"export async function GET() {",
		testGuard,
		"  return supabase.from('a').select()",
		"}",
		"",
		"export const POST = async (req: Request) => {",
		testGuard,
		"  const body = await req.json()",
		"  return supabase.from('a').insert(body)",
		"}",
		"",
		"const remove = async id => {",
		testGuard,
		"  return supabase.from('a').delete().eq('id', id)",
		"}",
	}, result.After)
	assert.Equal(t, []m.Insertion{
		{At: 3, Text: testGuard, Scope: 2},
		{At: 8, Text: testGuard, Scope: 7},
		{At: 14, Text: testGuard, Scope: 13},
	}, result.Insertions)
	assert.Empty(t, result.Diagnostics)

	for _, ins := range result.Insertions {
		assert.Equal(t, testGuard, result.After[ins.At])
	}
}

func TestRewriteLines_ScopeNotFound(t *testing.T) {
	rw := newTestRewriter(nil)
	lines := []string{
		"import { getSupabaseClient } from './supabase'",
		"",
		"supabase.channel('room').subscribe()",
	}

	result := rw.RewriteLines("realtime.ts", lines)

	assert.False(t, result.Changed)
	assert.Equal(t, lines, result.After)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, m.Diagnostic{
		Kind:    m.DiagnosticScopeNotFound,
		Line:    3,
		Text:    "supabase.channel('room').subscribe()",
		Message: "no enclosing function found above usage",
	}, result.Diagnostics[0])
}

func TestRewriteLines_NoUsages(t *testing.T) {
	rw := newTestRewriter(nil)
	lines := []string{"export function sum(a: number, b: number) {", "  return a + b", "}"}

	result := rw.RewriteLines("sum.ts", lines)

	assert.False(t, result.Changed)
	assert.Zero(t, result.Usages)
	assert.Equal(t, lines, result.After)
	assert.Equal(t, lines, result.Before)
}

func TestRewriteLines_DoesNotMutateInput(t *testing.T) {
	rw := newTestRewriter(nil)
	lines := make([]string, 3, 10)
	copy(lines, []string{"function load() {", "  supabase.auth.getUser()", "}"})

	_ = rw.RewriteLines("load.ts", lines)

	assert.Equal(t, []string{"function load() {", "  supabase.auth.getUser()", "}"}, lines)
}

func TestRewriteLines_Imports(t *testing.T) {
	source := []string{
		"'use client'",
		"",
		"export function Page() {",
		"  supabase.auth.getUser()",
		"}",
	}

	t.Run("existing import suppresses diagnostic", func(t *testing.T) {
		rw := newTestRewriter(nil)
		lines := append([]string{"import { getSupabaseClient } from '@/lib/supabase'"}, source...)

		result := rw.RewriteLines("page.tsx", lines)

		assert.True(t, result.Changed)
		assert.Empty(t, result.Diagnostics)
	})

	t.Run("adds the import line after directives", func(t *testing.T) {
		rw := NewRewriter(nil, RewriterOptions{
			Trigger:     "supabase.",
			Guard:       testGuard,
			FactoryName: "getSupabaseClient",
			ImportLine:  "import { getSupabaseClient } from '@/lib/supabase'",
			AddImport:   true,
		})

		result := rw.RewriteLines("page.tsx", source)

		assert.Equal(t, []string{
			"'use client'",
			"import { getSupabaseClient } from '@/lib/supabase'",
			"",
			"export function Page() {",
			testGuard,
			"  supabase.auth.getUser()",
			"}",
		}, result.After)
		assert.Equal(t, []m.Insertion{
			{At: 4, Text: testGuard, Scope: 3},
			{At: 1, Text: "import { getSupabaseClient } from '@/lib/supabase'", Scope: -1},
		}, result.Insertions)
		assert.Empty(t, result.Diagnostics)
	})

	t.Run("diagnostic lines follow the inserted import", func(t *testing.T) {
		rw := NewRewriter(nil, RewriterOptions{
			Trigger:     "supabase.",
			Guard:       testGuard,
			FactoryName: "getSupabaseClient",
			ImportLine:  "import { getSupabaseClient } from '@/lib/supabase'",
			AddImport:   true,
		})

		result := rw.RewriteLines("page.tsx", append([]string{"supabase.auth.onAuthStateChange(cb)"}, source[2:]...))

		require.Len(t, result.Diagnostics, 1)
		assert.Equal(t, 2, result.Diagnostics[0].Line)
		assert.Equal(t, "supabase.auth.onAuthStateChange(cb)", result.After[result.Diagnostics[0].Line-1])
	})
}

func TestRewriter_Usages(t *testing.T) {
	rw := newTestRewriter(nil)

	usages := rw.Usages([]string{
		"function load() {",
		testGuard,
		"  return supabase.from('t')",
		"}",
		"// supabase.auth in a comment counts too",
	})

	assert.Equal(t, []m.Usage{
		{Line: 2, Text: "  return supabase.from('t')"},
		{Line: 4, Text: "// supabase.auth in a comment counts too"},
	}, usages)
}

func TestRewrite_WritesChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "load.ts")
	require.NoError(t, os.WriteFile(path, []byte("function load() {\r\n  return supabase.from('t')\r\n}\r\n"), 0o600))

	rw := newTestRewriter(adapter.NewLocalSourceFSAdapter())

	result, err := rw.Rewrite(m.Path(path), true)
	require.NoError(t, err)
	assert.True(t, result.Changed)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "function load() {\n"+testGuard+"\n  return supabase.from('t')\n}\n", string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := rw.Rewrite(m.Path(path), true)
	require.NoError(t, err)
	assert.False(t, second.Changed)
}

func TestRewrite_NoWrites(t *testing.T) {
	tests := []struct {
		name    string
		content string
		write   bool
		changed bool
	}{
		{"file without trigger", "export const x = 1\n", true, false},
		{"already guarded", "function load() {\n" + testGuard + "\n  supabase.auth.getUser()\n}\n", true, false},
		{"dry run", "function load() {\n  supabase.auth.getUser()\n}\n", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &mockSourceFSAdapter{}
			fs.On("ReadFile", m.Path("a.ts")).Return([]byte(tt.content), nil)

			result, err := newTestRewriter(fs).Rewrite("a.ts", tt.write)
			require.NoError(t, err)
			assert.Equal(t, tt.changed, result.Changed)

			fs.AssertNotCalled(t, "WriteFile", mock.Anything, mock.Anything, mock.Anything)
			fs.AssertExpectations(t)
		})
	}
}

func TestRewrite_ReadFailure(t *testing.T) {
	fs := &mockSourceFSAdapter{}
	fs.On("ReadFile", m.Path("a.ts")).Return(nil, os.ErrPermission)

	result, err := newTestRewriter(fs).Rewrite("a.ts", true)

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Equal(t, err, result.Err)
	assert.False(t, result.Changed)
}

func TestRewrite_WriteFailure(t *testing.T) {
	errDiskFull := errors.New("disk full")

	fs := &mockSourceFSAdapter{}
	fs.On("ReadFile", m.Path("a.ts")).Return([]byte("function load() {\n  supabase.auth.getUser()\n}\n"), nil)
	fs.On("FileInfo", m.Path("a.ts")).Return(nil, os.ErrNotExist)
	fs.On("WriteFile", m.Path("a.ts"), mock.Anything, os.FileMode(0o644)).Return(errDiskFull)

	result, err := newTestRewriter(fs).Rewrite("a.ts", true)

	require.Error(t, err)
	assert.ErrorIs(t, err, errDiskFull)
	assert.ErrorIs(t, result.Err, errDiskFull)
	assert.True(t, result.Changed)
	fs.AssertExpectations(t)
}

func TestRewriteLines_IgnoreDirectives(t *testing.T) {
	rw := newTestRewriter(nil)

	t.Run("ignored usage gets no guard", func(t *testing.T) {
		lines := []string{
			"function legacy(client) {",
			"  // clientguard:ignore",
			"  return supabase.from('t').select()",
			"}",
			"",
			"function load() {",
			"  return supabase.from('t').select() // clientguard:ignore",
			"}",
		}

		result := rw.RewriteLines("legacy.ts", lines)

		assert.False(t, result.Changed)
		assert.Zero(t, result.Usages)
		assert.Equal(t, lines, result.After)
		assert.Empty(t, rw.Usages(lines))
	})

	t.Run("ignored file is left alone", func(t *testing.T) {
		lines := []string{
			"// clientguard:ignore-file",
			"function load() {",
			"  return supabase.from('t').select()",
			"}",
		}

		result := rw.RewriteLines("generated.ts", lines)

		assert.False(t, result.Changed)
		assert.Empty(t, result.Diagnostics)
		assert.Equal(t, lines, result.After)
		assert.Nil(t, rw.Usages(lines))
	})
}
