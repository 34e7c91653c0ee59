package item

import (
	"testing"

	"productinventory/testutil"
)

func TestItemHasNoInternalDependencies(t *testing.T) {
	testutil.AssertNoTransitiveDependency(t, testutil.ModulePath+"/internal/item", testutil.InternalImportForbidden,
		"item is the leaf of the dependency graph")
}
