package resolve

import (
	"testing"

	"auditportal/testutil"
)

func TestResolveStaysPure(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.PersistenceImportForbidden, "resolution reads the catalog and caller-supplied records only")
}
