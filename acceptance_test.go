package snapfilter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

// Each case directory holds input.filter and either expected.json or
// expected_error.txt.
func TestCompileAcceptance(t *testing.T) {
	testRoot := filepath.Join("testdata", "acceptance")

	entries, err := os.ReadDir(testRoot)
	if err != nil {
		t.Fatalf("failed to read testdata/acceptance: %v", err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		caseDir := filepath.Join(testRoot, e.Name())
		t.Run(e.Name(), func(t *testing.T) {
			input, err := os.ReadFile(filepath.Join(caseDir, "input.filter"))
			if err != nil {
				t.Fatalf("failed to read input: %v", err)
			}

			source := strings.TrimSuffix(string(input), "\n")
			result, compileErr := Compile(source)

			if expected, err := os.ReadFile(filepath.Join(caseDir, "expected.json")); err == nil {
				assert.NoError(t, compileErr)
				assert.Equal(t, strings.TrimSuffix(string(expected), "\n"), result)

				node, err := Decode(result)
				assert.NoError(t, err)

				// the normalized expression compiles to the same tree
				again, err := Compile(node.String())
				assert.NoError(t, err)
				assert.Equal(t, result, again)

				return
			}

			expected, err := os.ReadFile(filepath.Join(caseDir, "expected_error.txt"))
			if err != nil {
				t.Fatalf("case has neither expected.json nor expected_error.txt: %v", err)
			}

			assert.Error(t, compileErr)
			assert.Equal(t, strings.TrimSuffix(string(expected), "\n"), compileErr.Error())
		})
	}
}
