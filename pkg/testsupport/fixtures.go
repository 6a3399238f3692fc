package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// UpdateGoldenEnv, when set to any value, makes CompareWithGolden rewrite
// golden files with the current output.
const UpdateGoldenEnv = "CATALOG_UPDATE_GOLDEN"

// FixturePath is the path of a request or row fixture in the calling
// package's testdata directory.
func FixturePath(name string) string {
	return filepath.Join("testdata", name)
}

// GoldenPath is the path of an expected response body.
func GoldenPath(name string) string {
	return filepath.Join("testdata", "golden", name)
}

// LoadFixture reads path or fails the test.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "fixture %s", path)
	return data
}

// LoadFixtureJSON decodes the JSON fixture at path into dest.
func LoadFixtureJSON(t testing.TB, path string, dest any) {
	t.Helper()

	require.NoError(t, json.Unmarshal(LoadFixture(t, path), dest), "fixture %s", path)
}

// WriteGolden stores body at path, creating the directory.
func WriteGolden(t testing.TB, path string, body []byte) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, body, 0o644))
}

// CompareWithGolden asserts that body matches the golden file byte for byte.
// Response bodies are compared raw because cached hits must replay them
// unchanged. A missing golden file is written from body.
func CompareWithGolden(t testing.TB, path string, body []byte) {
	t.Helper()

	if _, set := os.LookupEnv(UpdateGoldenEnv); set {
		WriteGolden(t, path, body)
		return
	}
	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Logf("golden file %s missing, writing it", path)
		WriteGolden(t, path, body)
		return
	}
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(body), "golden %s", path)
}
