// Package campaign discovers survey sessions on disk. A campaign root holds
// one directory per flight date; each directory carries the orthomosaic
// exports of that flight, with the multispectral and color mosaics told apart
// by filename.
package campaign

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Session is one flight date's worth of input: the MS orthomosaic path and,
// when the color camera flew too, the RGB orthomosaic path.
type Session struct {
	Date    string
	MSPath  string
	RGBPath string // empty when no RGB capture exists
}

var tiffExtensions = []string{".tif", ".tiff"}

// ListSessions scans a campaign root and returns its sessions sorted by
// directory name (flight dates sort naturally). Directories without a
// multispectral mosaic are reported and skipped; a missing RGB mosaic is
// normal and leaves RGBPath empty.
func ListSessions(root string) ([]Session, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign root %s: %w", root, err)
	}

	var sessions []Session
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		msPath, rgbPath, err := FindSessionFiles(dir)
		if err != nil {
			fmt.Printf("Skipping session %s: %v\n", entry.Name(), err)
			continue
		}
		sessions = append(sessions, Session{
			Date:    entry.Name(),
			MSPath:  msPath,
			RGBPath: rgbPath,
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Date < sessions[j].Date
	})
	return sessions, nil
}

// FindSessionFiles locates the MS and RGB orthomosaics inside one session
// directory. The MS mosaic is required.
func FindSessionFiles(dir string) (msPath, rgbPath string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", fmt.Errorf("failed to read session directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isTIFF(entry.Name()) {
			continue
		}
		name := strings.ToLower(entry.Name())
		path := filepath.Join(dir, entry.Name())
		switch {
		case strings.Contains(name, "ms") && msPath == "":
			msPath = path
		case strings.Contains(name, "rgb") && rgbPath == "":
			rgbPath = path
		}
	}

	if msPath == "" {
		return "", "", fmt.Errorf("no multispectral orthomosaic (*ms*.tif) found in %s", dir)
	}
	return msPath, rgbPath, nil
}

func isTIFF(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range tiffExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
