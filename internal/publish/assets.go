package publish

import (
	"path/filepath"
	"strings"
)

// ExtractLocalAssets scans markdown content for link and image targets that
// point at local files. Absolute URLs, mail/tel links and in-page anchors
// are ignored.
func ExtractLocalAssets(content string) []string {
	var results []string
	cursor := 0
	for {
		pos := strings.Index(content[cursor:], "](")
		if pos < 0 {
			break
		}
		start := cursor + pos + 2
		end := strings.Index(content[start:], ")")
		if end < 0 {
			break
		}
		raw := strings.TrimSpace(content[start : start+end])
		target := strings.Trim(raw, "<>")
		if fields := strings.Fields(target); len(fields) > 0 {
			target = fields[0]
		} else {
			target = ""
		}
		target = strings.TrimSpace(target)
		if target != "" && !isRemoteTarget(target) {
			results = append(results, target)
		}
		cursor = start + end + 1
	}
	return results
}

func isRemoteTarget(target string) bool {
	return strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "mailto:") ||
		strings.HasPrefix(target, "tel:") ||
		strings.HasPrefix(target, "#")
}

// resolveAssetPath maps an asset reference to a filesystem path: root-slash
// references resolve against the project root, everything else against the
// referencing file's directory.
func resolveAssetPath(projectRoot, filePath, asset string) (string, bool) {
	trimmed := strings.TrimSpace(asset)
	if trimmed == "" {
		return "", false
	}
	if strings.HasPrefix(trimmed, "/") {
		return filepath.Join(projectRoot, strings.TrimPrefix(trimmed, "/")), true
	}
	return filepath.Join(filepath.Dir(filePath), trimmed), true
}
