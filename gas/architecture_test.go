package gas

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/linetiles/linetiles"

// coreImports lists the in-module packages the gas core may depend on. Everything else in the
// module (readers, stores, renderers, cmd) sits on top of gas and must not be imported back.
var coreImports = map[string]bool{
	modulePath + "/gas/stats":         true,
	modulePath + "/gas/trace":         true,
	modulePath + "/internal/testutil": true,
}

// leafPackages must not import anything from this module.
var leafPackages = map[string]bool{
	modulePath + "/gas/stats":         true,
	modulePath + "/gas/trace":         true,
	modulePath + "/gas/artifact":      true,
	modulePath + "/internal/testutil": true,
}

func loadModule(t *testing.T) []*packages.Package {
	t.Helper()
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	return pkgs
}

func isModuleImport(importPath string) bool {
	return importPath == modulePath || strings.HasPrefix(importPath, modulePath+"/")
}

func reportViolations(t *testing.T, what string, seen map[string]struct{}) {
	t.Helper()
	if len(seen) == 0 {
		return
	}
	violations := make([]string, 0, len(seen))
	for v := range seen {
		violations = append(violations, v)
	}
	sort.Strings(violations)
	for _, v := range violations {
		t.Errorf("%s: %s", what, v)
	}
	t.Fatalf("found %d forbidden imports", len(violations))
}

// TestCoreDoesNotImportAdapters verifies that the gas core stays independent of the
// packages that read model output, persist spectra, or draw figures.
func TestCoreDoesNotImportAdapters(t *testing.T) {
	seen := make(map[string]struct{})
	for _, pkg := range loadModule(t) {
		if pkg.PkgPath != modulePath+"/gas" {
			continue
		}
		for importPath := range pkg.Imports {
			if isModuleImport(importPath) && !coreImports[importPath] {
				seen[pkg.PkgPath+": "+importPath] = struct{}{}
			}
		}
	}
	reportViolations(t, "gas core imports adapter package", seen)
}

// TestLeafPackagesHaveNoModuleImports verifies that trace, stats, artifact and testutil
// can be used from any package, including in-package tests of gas.
func TestLeafPackagesHaveNoModuleImports(t *testing.T) {
	seen := make(map[string]struct{})
	for _, pkg := range loadModule(t) {
		if !leafPackages[pkg.PkgPath] {
			continue
		}
		for importPath := range pkg.Imports {
			if isModuleImport(importPath) {
				seen[pkg.PkgPath+": "+importPath] = struct{}{}
			}
		}
	}
	reportViolations(t, "leaf package imports module package", seen)
}
