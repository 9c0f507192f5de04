package obsrv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// maxIndent caps the indentation width of snapshots.
const maxIndent = 10

// extractRaw walks the node tree and returns a plain snapshot of the current
// values. Reserved names are never included.
func extractRaw(n *Node) Data {
	out := make(Data, len(n.keys))
	for _, key := range n.keys {
		if IsReserved(key) {
			continue
		}
		if group, ok := n.groups[key]; ok {
			out[key] = extractRaw(group)
			continue
		}
		out[key] = n.cells[key].Get()
	}
	return out
}

// Snapshot returns a plain copy of this level's current values. On the
// root it equals Store.GetJS.
func (n *Node) Snapshot() Data {
	return extractRaw(n)
}

// encodeJSON serializes a snapshot. indent <= 0 produces compact output.
func encodeJSON(v any, indent int) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		if indent > maxIndent {
			indent = maxIndent
		}
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("obsrv: encode snapshot: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
