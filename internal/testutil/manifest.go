package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// DefaultManifest declares the standard fixture set: two weapons and a
// shield under the "core" label, with one weapon also tagged "melee".
const DefaultManifest = `
assets:
  - name: broadsword
    kind: sword
    labels: [core, melee]
    spec:
      name: broadsword
      damage: 12
      weight: 6
  - name: rapier
    kind: sword
    labels: [core]
    spec:
      name: rapier
      damage: 7
      weight: 2
  - name: tower-shield
    kind: shield
    labels: [core]
    spec:
      name: tower-shield
      block: 9
      weight: 11
`

// WriteManifest writes content as assets.yaml under a temp dir and
// returns its path.
func WriteManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
