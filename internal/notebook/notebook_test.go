package notebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeBytes(t *testing.T) {
	testCases := []struct {
		name           string
		raw            string
		expected       int
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "sums code cell source lines only",
			// "import os\n" is 10 bytes, "print('hello world')\n..." lines total 27.
			raw: `{"cells": [
				{"cell_type": "code", "source": ["import os\n", "print('hello world')\n"]},
				{"cell_type": "markdown", "source": ["# A very long heading that must not count\n"]},
				{"cell_type": "code", "source": ["x = 1\n"]}
			]}`,
			expected: 10 + 21 + 6,
		},
		{
			name:     "single code cell totaling 37 bytes",
			raw:      `{"cells": [{"cell_type": "code", "source": ["a = 'twelve chars'\n", "b = len(a) + 4949\n"]}]}`,
			expected: 37,
		},
		{
			name:     "multibyte source lines count UTF-8 bytes",
			raw:      `{"cells": [{"cell_type": "code", "source": ["s = 'héllo'"]}]}`,
			expected: 12,
		},
		{
			name:     "surrounding whitespace and quotes are tolerated",
			raw:      "  '{\"cells\": [{\"cell_type\": \"code\", \"source\": [\"ab\"]}]}'  ",
			expected: 2,
		},
		{
			name:     "empty cell list yields zero",
			raw:      `{"cells": []}`,
			expected: 0,
		},
		{
			name:           "malformed JSON fails the traversal",
			raw:            `{"cells": [`,
			expectError:    true,
			expectedErrMsg: "failed to parse notebook document",
		},
		{
			name:           "missing cells field fails",
			raw:            `{"metadata": {}}`,
			expectError:    true,
			expectedErrMsg: "no cells field",
		},
		{
			name:           "cell without cell_type fails",
			raw:            `{"cells": [{"source": ["x = 1\n"]}]}`,
			expectError:    true,
			expectedErrMsg: "has no cell_type",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			count, err := CodeBytes([]byte(tc.raw))
			if tc.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, count)
		})
	}
}
