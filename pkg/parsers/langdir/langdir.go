// SPDX-License-Identifier: Apache-2.0

// Package langdir resolves a resource directory's language direction by
// consulting a manifest file (YAML or JSON variants) at one of two
// canonical relative paths; absent ⇒ LTR.
package langdir

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/wkelly17/bibleassembler/pkg/model"
)

// candidatePaths are the two manifest file names probed, in order, at the
// root of a provisioned resource directory: the YAML variant, then the JSON
// one. A manifest nested one level down (zip layout) is not consulted.
var candidatePaths = []string{
	"manifest.yaml",
	"manifest.json",
}

type manifestShape struct {
	DC struct {
		Language struct {
			Direction string `yaml:"direction" json:"direction"`
		} `yaml:"language" json:"language"`
	} `yaml:"dublin_core" json:"dublin_core"`
}

// Resolve returns the language direction declared by a manifest under dir,
// defaulting to LTR when no manifest is present or it declares no direction.
func Resolve(dir string) model.Direction {
	for _, rel := range candidatePaths {
		data, err := os.ReadFile(filepath.Join(dir, rel))
		if err != nil {
			continue
		}
		var m manifestShape
		if filepath.Ext(rel) == ".json" {
			if err := json.Unmarshal(data, &m); err != nil {
				continue
			}
		} else {
			if err := yaml.Unmarshal(data, &m); err != nil {
				continue
			}
		}
		switch m.DC.Language.Direction {
		case "rtl":
			return model.RTL
		case "ltr":
			return model.LTR
		}
	}
	return model.LTR
}
