package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOutput marks output that the external tool produced but that does
// not contain a JSON payload. It is deliberately distinct from a process
// failure: the tool ran, but broke its output contract.
var ErrInvalidOutput = errors.New("classifier produced invalid output")

// Result is the JSON object printed by the inference tool, passed through to
// the client as-is.
type Result map[string]any

// Parse isolates and decodes the JSON payload from raw tool output. The tool
// may print incidental log lines first, so the last line starting with '{'
// wins; the whole trimmed output is tried only when no such line exists.
// Once a candidate is isolated it must decode: a broken payload is an
// ErrInvalidOutput, never silently repaired.
func Parse(raw []byte) (Result, error) {
	out := strings.TrimSpace(string(raw))
	if out == "" {
		return nil, fmt.Errorf("%w: empty output", ErrInvalidOutput)
	}

	candidate := out
	lines := strings.Split(out, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); strings.HasPrefix(line, "{") {
			candidate = line
			break
		}
	}

	var result Result
	if err := json.Unmarshal([]byte(candidate), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	return result, nil
}
