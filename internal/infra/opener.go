package infra

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/eliteGoblin/parcel/internal/domain"
)

// FolderOpenerImpl implements domain.FolderOpener via the platform file
// manager.
type FolderOpenerImpl struct{}

// NewFolderOpener creates a folder opener for the current platform.
func NewFolderOpener() domain.FolderOpener {
	return &FolderOpenerImpl{}
}

// OpenContaining reveals path in the OS file manager. On windows and darwin
// the file itself is selected; on linux the parent directory is opened with
// the first file manager found.
func (o *FolderOpenerImpl) OpenContaining(path string) error {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("explorer", "/select,", path).Start()

	case "darwin":
		return exec.Command("open", "-R", path).Start()

	default:
		parent := filepath.Dir(path)
		for _, fm := range []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"} {
			if err := exec.Command(fm, parent).Start(); err == nil {
				return nil
			}
		}
		return fmt.Errorf("no supported file manager found for %s", parent)
	}
}

// Ensure FolderOpenerImpl implements domain.FolderOpener.
var _ domain.FolderOpener = (*FolderOpenerImpl)(nil)
