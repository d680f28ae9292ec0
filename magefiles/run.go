//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the viewer with assets/prism.toml. Set PRISM_MODEL to open a model at
// startup.
func (Run) Viewer() error {
	mg.Deps(Build.Viewer)
	args := []string{"-config", "assets/prism.toml"}
	if model := os.Getenv("PRISM_MODEL"); model != "" {
		args = append(args, model)
	}
	fmt.Println("Run viewer...")
	_, err := executeCmd("bin/prism", withArgs(args...), withStream())
	return err
}
