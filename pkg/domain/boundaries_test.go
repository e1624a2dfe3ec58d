package domain_test

import (
	"testing"

	"assetregistry/testutil"
)

// The domain package is the dependency floor of the module: pure types with no
// infrastructure or third-party imports.
func TestDomainImportsNothingAboveStdlib(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"domain must not reach into internal packages")
	testutil.AssertNoDirectImports(t, ".", testutil.ThirdPartyImportForbidden,
		"domain must stay free of third-party dependencies")
}
