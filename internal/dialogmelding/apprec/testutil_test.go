package apprec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixture loads testdata/name with the placeholder ids replaced.
func fixture(t *testing.T, name, apprecID, bestillingID string) []byte {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	s := strings.ReplaceAll(string(raw), "APPREC_ID", apprecID)
	s = strings.ReplaceAll(s, "BESTILLING_ID", bestillingID)
	return []byte(s)
}
