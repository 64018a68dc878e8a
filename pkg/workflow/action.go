package workflow

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// actionRef is a parsed `uses:` reference.
type actionRef struct {
	Name    string
	Version string
}

func parseActionRef(raw string) (actionRef, error) {
	name, version, found := strings.Cut(raw, "@")
	if !found || name == "" || version == "" {
		return actionRef{}, errors.Wrap(ErrBadActionRef, raw)
	}

	return actionRef{Name: name, Version: version}, nil
}

// Invocation is the mutable state an action operates on. Actions may
// update Env and Dir; the runner copies the changes back into the job.
type Invocation struct {
	With map[string]string
	Env  map[string]string
	Dir  string
}

// Action is a reusable step implementation referenced with `uses:`.
type Action interface {
	Name() string
	Run(ctx context.Context, inv *Invocation) error
}

// Registry resolves action references to implementations.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
}

// NewRegistry creates a registry with the builtin actions registered.
func NewRegistry() *Registry {
	reg := &Registry{actions: make(map[string]Action)}
	reg.Register(checkoutAction{})
	reg.Register(setupEnvAction{})

	return reg
}

// Register adds or replaces an action.
func (r *Registry) Register(action Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[action.Name()] = action
}

func (r *Registry) resolve(ref actionRef) (Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	action, ok := r.actions[ref.Name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownAction, ref.Name)
	}

	return action, nil
}

// checkoutAction pins the job working directory to an existing path. The
// path defaults to the current working directory.
type checkoutAction struct{}

func (checkoutAction) Name() string { return "checkout" }

func (checkoutAction) Run(_ context.Context, inv *Invocation) error {
	path := inv.With["path"]
	if path == "" {
		path = "."
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(inv.Dir, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "unable to check out %s", path)
	}
	if !info.IsDir() {
		return errors.Errorf("checkout path %s is not a directory", path)
	}

	inv.Dir = path

	return nil
}

// setupEnvAction exports every `with:` pair into the job environment.
type setupEnvAction struct{}

func (setupEnvAction) Name() string { return "setup-env" }

func (setupEnvAction) Run(_ context.Context, inv *Invocation) error {
	if len(inv.With) == 0 {
		return errors.New("setup-env needs at least one with entry")
	}
	for name, value := range inv.With {
		inv.Env[name] = value
	}

	return nil
}
