package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// findWorkflowFile searches for the named workflow file in the working
// directory and all its parents.
func findWorkflowFile(name string) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "unable to retrieve the current working directory")
	}

	path := wd
	for {
		candidate := filepath.Join(path, name)
		_, err := os.Stat(candidate)
		if err == nil {
			rel, err := filepath.Rel(wd, candidate)
			if err != nil {
				return candidate, nil
			}

			return rel, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", errors.Wrapf(err, "unable to check %s", candidate)
		}

		parent := filepath.Dir(path)
		if parent == path {
			return "", errors.Errorf("no %s file found", name)
		}
		path = parent
	}
}
