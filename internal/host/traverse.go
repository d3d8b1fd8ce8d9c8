package host

import (
	"encoding/json"
	"sort"
	"strings"
)

// refParser extracts name+identifier pairs from an API payload. The typed
// parser handles the documented response shapes; the walker is the degrade
// path for host versions that moved fields around.
type refParser interface {
	parseRefs(data []byte) []NamedRef
}

// typedParser decodes the two documented list shapes: records with a
// nested id object, or records carrying uuid/name directly
type typedParser struct{}

func (typedParser) parseRefs(data []byte) []NamedRef {
	var nested []struct {
		ID struct {
			UUID string `json:"uuid"`
			Name string `json:"name"`
		} `json:"id"`
	}
	if err := json.Unmarshal(data, &nested); err == nil {
		var out []NamedRef
		for _, r := range nested {
			if r.ID.UUID != "" {
				out = append(out, NamedRef{UUID: r.ID.UUID, Name: r.ID.Name})
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	var flat []struct {
		UUID string `json:"uuid"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &flat); err == nil {
		var out []NamedRef
		for _, r := range flat {
			if r.UUID != "" {
				out = append(out, NamedRef{UUID: r.UUID, Name: r.Name})
			}
		}
		return out
	}
	return nil
}

// walkerParser recursively scans arbitrary JSON for objects that pair an
// identifier-ish key with a name-ish key. Last resort only; shape drift in
// the host API lands here instead of breaking the caller.
type walkerParser struct{}

func (walkerParser) parseRefs(data []byte) []NamedRef {
	var root interface{}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil
	}
	var out []NamedRef
	walkRefs(root, &out)
	return out
}

func walkRefs(v interface{}, out *[]NamedRef) {
	switch node := v.(type) {
	case map[string]interface{}:
		uuid, name := "", ""
		for key, val := range node {
			s, ok := val.(string)
			if !ok {
				continue
			}
			lowered := strings.ToLower(key)
			switch {
			case lowered == "uuid" || lowered == "id":
				uuid = s
			case lowered == "name" || lowered == "title":
				name = s
			}
		}
		if uuid != "" {
			*out = append(*out, NamedRef{UUID: uuid, Name: name})
			return
		}
		for _, key := range sortedKeys(node) {
			walkRefs(node[key], out)
		}
	case []interface{}:
		for _, item := range node {
			walkRefs(item, out)
		}
	}
}

// sortedKeys keeps traversal order deterministic across runs
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// gatherStrings collects every string leaf of a decoded record. Media
// scoring treats all of them as keywords.
func gatherStrings(v interface{}) []string {
	var out []string
	var walk func(interface{})
	walk = func(node interface{}) {
		switch n := node.(type) {
		case string:
			if strings.TrimSpace(n) != "" {
				out = append(out, n)
			}
		case map[string]interface{}:
			for _, key := range sortedKeys(n) {
				walk(n[key])
			}
		case []interface{}:
			for _, item := range n {
				walk(item)
			}
		}
	}
	walk(v)
	return out
}
