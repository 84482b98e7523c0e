package script

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the name of the manifest inside the scripts directory.
const ManifestFile = "manifest.yaml"

// Manifest lists the scripted transforms of a site.
//
//	transforms:
//	  - type: xinmods:product
//	    variant: teaser
//	    script: product_teaser.tengo
type Manifest struct {
	Transforms []ManifestEntry `yaml:"transforms"`
}

// ManifestEntry binds one script to a (type, variant) key.
type ManifestEntry struct {
	Type    string `yaml:"type"`
	Variant string `yaml:"variant"`
	Script  string `yaml:"script"` // relative to the scripts directory
}

// LoadScripts reads the manifest in dir and the scripts it names. A missing
// manifest yields no scripts.
func LoadScripts(fsys afero.Fs, dir string) ([]*Script, error) {
	manifestPath := path.Join(dir, ManifestFile)
	raw, err := afero.ReadFile(fsys, manifestPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, NewScriptError(ErrorTypeManifest, manifestPath, "failed to read manifest", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, NewScriptError(ErrorTypeManifest, manifestPath, "failed to parse manifest", err)
	}

	scripts := make([]*Script, 0, len(manifest.Transforms))
	for i, entry := range manifest.Transforms {
		if entry.Type == "" || entry.Variant == "" || entry.Script == "" {
			return nil, NewScriptError(ErrorTypeManifest, manifestPath,
				fmt.Sprintf("entry %d needs type, variant and script", i), nil)
		}
		if strings.Contains(entry.Script, "..") {
			return nil, NewScriptError(ErrorTypeManifest, manifestPath,
				fmt.Sprintf("entry %d: script path %q leaves the scripts directory", i, entry.Script), nil)
		}

		scriptPath := path.Join(dir, entry.Script)
		src, err := afero.ReadFile(fsys, scriptPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, NewScriptError(ErrorTypeNotFound, scriptPath, "script not found", err)
			}
			return nil, NewScriptError(ErrorTypeManifest, scriptPath, "failed to read script", err)
		}

		scripts = append(scripts, &Script{
			Type:    entry.Type,
			Variant: entry.Variant,
			Path:    scriptPath,
			Content: string(src),
		})
	}
	return scripts, nil
}
