package lockfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesPackageVersionRange(t *testing.T) {
	pkg := Package{Name: "demo", RequiresPython: ">=3.8,<4.0"}

	for version, want := range map[string]bool{
		"3.8":  true,
		"3.12": true,
		"3.7":  false,
	} {
		env := &Environment{PythonVersion: version}
		ok, err := env.MatchesPackage(pkg)
		require.NoError(t, err, version)
		assert.Equal(t, want, ok, version)
	}
}

func TestMatchesPackageWildcardRange(t *testing.T) {
	env := &Environment{PythonVersion: "3.9.7"}
	ok, err := env.MatchesPackage(Package{Name: "demo", RequiresPython: "3.9.*"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchesPackagePlatformAndImplementation(t *testing.T) {
	pkg := Package{Name: "demo", Platform: "linux", Implementation: "cpython"}

	ok, err := (&Environment{Platform: "linux", Implementation: "CPython"}).MatchesPackage(pkg)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = (&Environment{Platform: "windows"}).MatchesPackage(pkg)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmptyEnvironmentMatchesEverything(t *testing.T) {
	ok, err := (&Environment{}).MatchesPackage(Package{Name: "x", RequiresPython: "<2.0", Platform: "vms"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchesPackageBadRange(t *testing.T) {
	env := &Environment{PythonVersion: "3.10"}
	_, err := env.MatchesPackage(Package{Name: "demo", RequiresPython: "not-a-range"})
	require.Error(t, err)
}

func TestCompatibleTarget(t *testing.T) {
	meta := Metadata{Targets: []Target{
		{RequiresPython: ">=3.8", Platform: "linux", Implementation: "cpython"},
		{RequiresPython: ">=3.8", Platform: "macos", Implementation: "cpython"},
	}}

	target, err := (&Environment{PythonVersion: "3.11", Platform: "macos"}).CompatibleTarget(meta)
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, "macos", target.Platform)

	_, err = (&Environment{PythonVersion: "3.6", Platform: "linux"}).CompatibleTarget(meta)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no compatible lock target")
}

func TestCompatibleTargetNoTargets(t *testing.T) {
	target, err := (&Environment{PythonVersion: "3.11"}).CompatibleTarget(Metadata{})
	require.NoError(t, err)
	assert.Nil(t, target)
}
