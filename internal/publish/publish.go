// Package publish builds a static snapshot of selected project files and
// optionally ships that snapshot to an SSH git remote.
package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cp "github.com/otiai10/copy"
	"github.com/sirupsen/logrus"
)

// DefaultOutputDir is the snapshot directory used when a request names none.
const DefaultOutputDir = "_publish"

// Request selects the files to snapshot. Files and referenced assets must
// live inside ProjectRoot; anything outside it is skipped with a warning.
type Request struct {
	ProjectRoot string   `json:"projectRoot"`
	Files       []string `json:"files"`
	OutputDir   string   `json:"outputDir,omitempty"`
}

// Response summarizes a snapshot run.
type Response struct {
	OK       bool     `json:"ok"`
	Summary  string   `json:"summary"`
	Warnings []string `json:"warnings"`
}

// Publish copies the selected files plus any local assets they reference
// into the output directory, preserving their layout relative to the
// project root.
func Publish(req Request) (*Response, error) {
	info, err := os.Stat(req.ProjectRoot)
	if err != nil || !info.IsDir() {
		return nil, errors.New("project root is missing")
	}
	if len(req.Files) == 0 {
		return nil, errors.New("no files selected for publish")
	}

	outputDir, err := resolveOutputDir(req.ProjectRoot, req.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	rootCanon, err := canonicalize(req.ProjectRoot)
	if err != nil {
		return nil, err
	}
	outputCanon, err := canonicalize(outputDir)
	if err != nil {
		return nil, err
	}
	if !isWithin(rootCanon, outputCanon) {
		return nil, errors.New("publish directory must stay inside the project root")
	}

	var warnings []string
	copiedFiles := 0
	copiedAssets := 0
	assetsSeen := map[string]bool{}

	for _, file := range req.Files {
		if _, err := os.Stat(file); err != nil {
			warnings = append(warnings, "File not found: "+file)
			continue
		}
		fileCanon, err := canonicalize(file)
		if err != nil {
			return nil, err
		}
		if !isWithin(rootCanon, fileCanon) {
			warnings = append(warnings, "Skipped file outside project: "+file)
			continue
		}

		relative, err := filepath.Rel(rootCanon, fileCanon)
		if err != nil {
			return nil, fmt.Errorf("resolving relative path: %w", err)
		}
		if err := cp.Copy(fileCanon, filepath.Join(outputCanon, relative)); err != nil {
			return nil, fmt.Errorf("copying %s: %w", file, err)
		}
		copiedFiles++

		content, err := os.ReadFile(fileCanon)
		if err != nil {
			logrus.Debugf("publish: skipping asset scan for %s: %v", file, err)
			continue
		}
		for _, asset := range ExtractLocalAssets(string(content)) {
			assetPath, ok := resolveAssetPath(rootCanon, fileCanon, asset)
			if !ok {
				continue
			}
			assetInfo, err := os.Stat(assetPath)
			if err != nil {
				warnings = append(warnings, "Missing asset: "+asset)
				continue
			}
			if assetInfo.IsDir() {
				continue
			}
			assetCanon, err := canonicalize(assetPath)
			if err != nil {
				return nil, err
			}
			if !isWithin(rootCanon, assetCanon) {
				warnings = append(warnings, "Skipped asset outside project: "+asset)
				continue
			}
			if assetsSeen[assetCanon] {
				continue
			}
			assetsSeen[assetCanon] = true

			relAsset, err := filepath.Rel(rootCanon, assetCanon)
			if err != nil {
				return nil, fmt.Errorf("resolving asset path: %w", err)
			}
			if err := cp.Copy(assetCanon, filepath.Join(outputCanon, relAsset)); err != nil {
				return nil, fmt.Errorf("copying asset %s: %w", asset, err)
			}
			copiedAssets++
		}
	}

	summary := fmt.Sprintf("Published %d file(s) and %d asset(s)", copiedFiles, copiedAssets)
	if err := appendLog(filepath.Join(outputCanon, LogFileName), "PUBLISH",
		fmt.Sprintf("Published %d file(s), %d asset(s)", copiedFiles, copiedAssets)); err != nil {
		return nil, err
	}

	return &Response{OK: true, Summary: summary, Warnings: warnings}, nil
}

func resolveOutputDir(projectRoot, outputDir string) (string, error) {
	value := strings.TrimSpace(outputDir)
	if outputDir == "" {
		value = DefaultOutputDir
	}
	if value == "" {
		return "", errors.New("publish directory cannot be empty")
	}
	if filepath.IsAbs(value) {
		return value, nil
	}
	return filepath.Join(projectRoot, value), nil
}

// canonicalize resolves symlinks so containment checks cannot be escaped
// through a linked directory.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
