package apidoc

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jpcadena/aws-session-management/internal/config"
)

// DataURL encodes the PNG at path as a data URL for inline embedding in the
// API document.
func DataURL(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw), nil
}

// ProjectImage returns the project logo shown in the document description.
func ProjectImage() (string, error) {
	return DataURL(filepath.Join(config.AssetsDir, "images", "project.png"))
}

// SessionImage returns the illustration attached to the session tag.
func SessionImage() (string, error) {
	return DataURL(filepath.Join(config.AssetsDir, "images", "session.png"))
}
