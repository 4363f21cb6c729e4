package param

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DefaultBranch is the path used for item and list outputs.
const DefaultBranch = "{0}"

// DataItem is one value inside a data tree branch as sent by the host.
// Data is usually a JSON string holding the JSON encoding of the value
// ("3.0", "\"text\""), but a bare JSON value is accepted as well.
type DataItem struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// InputItem is one element of a solve request's "values" array.
type InputItem struct {
	ParamName string                `json:"ParamName"`
	InnerTree map[string][]DataItem `json:"InnerTree"`
}

// OutputData is one value of an output branch.
type OutputData struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// OutputItem is one element of a solve response's "values" array.
type OutputItem struct {
	ParamName string                  `json:"ParamName"`
	InnerTree map[string][]OutputData `json:"InnerTree"`
}

// DecodeInputItem parses a raw solve-request item.
func DecodeInputItem(raw json.RawMessage) (InputItem, error) {
	var item InputItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return InputItem{}, fmt.Errorf("malformed input item: %w", err)
	}
	return item, nil
}

// BranchPaths returns the branch paths of a tree in a stable order.
func BranchPaths[T any](tree map[string][]T) []string {
	paths := make([]string, 0, len(tree))
	for p := range tree {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// FirstBranch returns the values of the first branch in path order.
func FirstBranch(tree map[string][]DataItem) []DataItem {
	paths := BranchPaths(tree)
	if len(paths) == 0 {
		return nil
	}
	return tree[paths[0]]
}

// dataText extracts the textual payload of a data item.
func dataText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("data is empty")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("data is not a valid json string: %w", err)
		}
		return s, nil
	}
	return string(raw), nil
}

// unquoteText strips one level of JSON string quoting, as hosts send text
// values JSON-encoded inside the data string.
func unquoteText(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var out string
		if err := json.Unmarshal([]byte(s), &out); err == nil {
			return out
		}
	}
	return s
}
