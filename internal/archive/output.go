// Package archive orchestrates compress and decompress batches, translating
// codec progress into UI-facing updates.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveOutputDir derives a collision-free extraction directory for an
// archive: the file stem placed next to the source, with " (2)", " (3)", ...
// appended until a free name is found. Best-effort only; nothing reserves the
// name against concurrent external creation.
func ResolveOutputDir(source string) string {
	base := filepath.Base(source)
	stem := base[:len(base)-len(filepath.Ext(base))]
	if stem == "" {
		stem = base
	}
	parent := filepath.Dir(source)

	counter := 1
	candidate := filepath.Join(parent, stem)
	for pathExists(candidate) {
		counter++
		candidate = filepath.Join(parent, fmt.Sprintf("%s (%d)", stem, counter))
	}
	return candidate
}

// ResolveDestination resolves a compress destination: absolute paths are used
// verbatim, relative ones land next to the first source of the batch rather
// than in the working directory, so drag-and-drop batches produce outputs
// beside the inputs.
func ResolveDestination(destination string, sources []string) string {
	if filepath.IsAbs(destination) {
		return destination
	}
	if len(sources) == 0 {
		return destination
	}
	return filepath.Join(filepath.Dir(sources[0]), destination)
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
