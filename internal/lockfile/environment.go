package lockfile

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Environment narrows the download set to one python/platform/
// implementation combination. Zero-value fields match everything.
type Environment struct {
	PythonVersion  string
	Platform       string
	Implementation string
}

func (e *Environment) Empty() bool {
	return e == nil || (e.PythonVersion == "" && e.Platform == "" && e.Implementation == "")
}

// MatchesPackage reports whether a locked package is compatible with the
// environment filter.
func (e *Environment) MatchesPackage(pkg Package) (bool, error) {
	if e.Empty() {
		return true, nil
	}
	if e.Platform != "" && pkg.Platform != "" && !strings.EqualFold(e.Platform, pkg.Platform) {
		return false, nil
	}
	if e.Implementation != "" && pkg.Implementation != "" && !strings.EqualFold(e.Implementation, pkg.Implementation) {
		return false, nil
	}
	if e.PythonVersion != "" && pkg.RequiresPython != "" {
		ok, err := versionInRange(e.PythonVersion, pkg.RequiresPython)
		if err != nil {
			return false, fmt.Errorf("package %s: %v", pkg.Name, err)
		}
		return ok, nil
	}
	return true, nil
}

// CompatibleTarget picks the first lock target matching the environment.
// A lock without targets accepts any environment; an explicit filter that
// matches no target is a fatal precondition for the caller.
func (e *Environment) CompatibleTarget(meta Metadata) (*Target, error) {
	if len(meta.Targets) == 0 {
		return nil, nil
	}
	for i, target := range meta.Targets {
		if e.matchesTarget(target) {
			return &meta.Targets[i], nil
		}
	}
	return nil, fmt.Errorf("no compatible lock target for python=%q platform=%q implementation=%q",
		e.PythonVersion, e.Platform, e.Implementation)
}

func (e *Environment) matchesTarget(target Target) bool {
	if e.Platform != "" && target.Platform != "" && !strings.EqualFold(e.Platform, target.Platform) {
		return false
	}
	if e.Implementation != "" && target.Implementation != "" && !strings.EqualFold(e.Implementation, target.Implementation) {
		return false
	}
	if e.PythonVersion != "" && target.RequiresPython != "" {
		ok, err := versionInRange(e.PythonVersion, target.RequiresPython)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// versionInRange evaluates a requires-python style range ("">=3.8,<4.0",
// "3.9.*") against a concrete version.
func versionInRange(version, spec string) (bool, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("invalid python version %q: %v", version, err)
	}
	c, err := semver.NewConstraint(strings.ReplaceAll(spec, "*", "x"))
	if err != nil {
		return false, fmt.Errorf("invalid version range %q: %v", spec, err)
	}
	return c.Check(v), nil
}
