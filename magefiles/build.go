//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Downloads the modules and builds the viewer into bin/prism.
func (Build) Viewer() error {
	if _, err := executeCmd("go", withArgs("mod", "download")); err != nil {
		return err
	}
	out := filepath.Join("bin", "prism")
	fmt.Printf("Building %s...\n", out)
	_, err := executeCmd("go", withArgs("build", "-o", out, "."), withStream())
	return err
}
