package component

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hupe1980/hops/core"
)

// LoadIcon reads an icon file and returns it base64 encoded. The path is
// tried as given (absolute or relative to the working directory) and then
// relative to resourceDir. It fails with a KindResource error when no
// candidate exists.
func LoadIcon(path, resourceDir string) (string, error) {
	candidates := []string{path}
	if !filepath.IsAbs(path) && resourceDir != "" {
		candidates = append(candidates, filepath.Join(resourceDir, path))
	}

	for _, c := range candidates {
		data, err := os.ReadFile(c)
		if err == nil {
			return base64.StdEncoding.EncodeToString(data), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", core.WrapError(core.KindResource, "", err, fmt.Sprintf("cannot read icon %s: %v", c, err))
		}
	}
	return "", core.NewError(core.KindResource, "", "icon not found: %s", path)
}
