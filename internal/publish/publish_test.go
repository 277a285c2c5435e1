package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestPublishCopiesFilesAndAssets(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"docs/post.md":         "![shot](images/shot.png)\n[root asset](/shared/logo.svg)\n[site](https://example.com)\n",
		"docs/images/shot.png": "png-bytes",
		"shared/logo.svg":      "svg-bytes",
	})

	response, err := Publish(Request{
		ProjectRoot: root,
		Files:       []string{filepath.Join(root, "docs", "post.md")},
	})
	require.NoError(t, err)
	assert.True(t, response.OK)
	assert.Equal(t, "Published 1 file(s) and 2 asset(s)", response.Summary)
	assert.Empty(t, response.Warnings)

	outputDir := filepath.Join(root, DefaultOutputDir)
	for _, rel := range []string{
		"docs/post.md",
		"docs/images/shot.png",
		"shared/logo.svg",
	} {
		_, err := os.Stat(filepath.Join(outputDir, filepath.FromSlash(rel)))
		assert.NoError(t, err, "expected %s in snapshot", rel)
	}

	logData, err := os.ReadFile(filepath.Join(outputDir, LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "[PUBLISH] Published 1 file(s), 2 asset(s)")
}

func TestPublishWarnsOnMissingFileAndAsset(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"post.md": "![gone](missing.png)\n",
	})

	response, err := Publish(Request{
		ProjectRoot: root,
		Files: []string{
			filepath.Join(root, "post.md"),
			filepath.Join(root, "never-written.md"),
		},
	})
	require.NoError(t, err)
	assert.True(t, response.OK)
	require.Len(t, response.Warnings, 2)
	assert.Contains(t, response.Warnings[0], "Missing asset: missing.png")
	assert.Contains(t, response.Warnings[1], "File not found")
}

func TestPublishSkipsFilesOutsideProject(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"inside.md": "hello\n"})
	outside := t.TempDir()
	writeTree(t, outside, map[string]string{"outside.md": "nope\n"})

	response, err := Publish(Request{
		ProjectRoot: root,
		Files: []string{
			filepath.Join(root, "inside.md"),
			filepath.Join(outside, "outside.md"),
		},
	})
	require.NoError(t, err)
	require.Len(t, response.Warnings, 1)
	assert.Contains(t, response.Warnings[0], "Skipped file outside project")
	assert.Equal(t, "Published 1 file(s) and 0 asset(s)", response.Summary)
}

func TestPublishCopiesEachAssetOnce(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.md":    "![x](pic.png)\n",
		"b.md":    "![x](pic.png)\n",
		"pic.png": "png",
	})

	response, err := Publish(Request{
		ProjectRoot: root,
		Files: []string{
			filepath.Join(root, "a.md"),
			filepath.Join(root, "b.md"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Published 2 file(s) and 1 asset(s)", response.Summary)
}

func TestPublishRejectsOutputDirOutsideProject(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"post.md": "x\n"})
	elsewhere := t.TempDir()

	_, err := Publish(Request{
		ProjectRoot: root,
		Files:       []string{filepath.Join(root, "post.md")},
		OutputDir:   elsewhere,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must stay inside the project root")
}

func TestPublishRejectsEmptySelection(t *testing.T) {
	root := t.TempDir()
	_, err := Publish(Request{ProjectRoot: root})
	assert.Error(t, err)
}

func TestPublishRejectsMissingProjectRoot(t *testing.T) {
	_, err := Publish(Request{
		ProjectRoot: filepath.Join(t.TempDir(), "nope"),
		Files:       []string{"x.md"},
	})
	assert.Error(t, err)
}

func TestExtractLocalAssets(t *testing.T) {
	content := strings.Join([]string{
		"![image](images/shot.png)",
		"[doc](notes/plan.md)",
		"[angled](<spaced path.png>)",
		"[titled](diagram.svg \"A title\")",
		"[remote](https://example.com/x.png)",
		"[insecure](http://example.com/y.png)",
		"[mail](mailto:me@example.com)",
		"[phone](tel:+123456)",
		"[anchor](#section)",
	}, "\n")

	assets := ExtractLocalAssets(content)
	assert.Equal(t, []string{
		"images/shot.png",
		"notes/plan.md",
		"spaced",
		"diagram.svg",
	}, assets)
}

func TestExtractLocalAssetsEmptyAndUnclosed(t *testing.T) {
	assert.Empty(t, ExtractLocalAssets("no links here"))
	assert.Empty(t, ExtractLocalAssets("[broken](never-closed"))
	assert.Empty(t, ExtractLocalAssets("[empty]()"))
}

func TestResolveAssetPath(t *testing.T) {
	root := "/proj"
	file := "/proj/docs/post.md"

	path, ok := resolveAssetPath(root, file, "images/x.png")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/proj", "docs", "images", "x.png"), path)

	path, ok = resolveAssetPath(root, file, "/shared/x.png")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/proj", "shared", "x.png"), path)

	_, ok = resolveAssetPath(root, file, "   ")
	assert.False(t, ok)
}
