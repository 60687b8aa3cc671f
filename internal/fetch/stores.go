package fetch

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// StoreTable maps IGDB external_games category codes to store labels.
// The table is configuration, not logic: upstream adds codes from time
// to time, so unknown codes synthesize a label instead of erroring.
type StoreTable map[int]string

// DefaultStoreTable returns the codes the pipeline has shipped with so
// far. Not exhaustive; see Label for the fallback.
func DefaultStoreTable() StoreTable {
	return StoreTable{
		1:  "steam",
		5:  "gog",
		11: "android",
		12: "ios",
		13: "microsoft",
		14: "playstation",
		15: "xbox",
		20: "twitch",
		23: "amazon",
		26: "epic",
		28: "oculus",
		30: "itch",
	}
}

// LoadStoreTable reads a replacement table from a JSON file of the
// form {"1": "steam", ...}. An empty path returns the default table.
func LoadStoreTable(path string) (StoreTable, error) {
	if path == "" {
		return DefaultStoreTable(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read store table %s: %w", path, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse store table %s: %w", path, err)
	}

	table := make(StoreTable, len(raw))
	for k, v := range raw {
		code, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("store table %s: bad category code %q", path, k)
		}
		table[code] = v
	}
	return table, nil
}

// Label resolves a category code to its store label, synthesizing
// "store_<code>" for codes the table does not know.
func (t StoreTable) Label(category int) string {
	if name, ok := t[category]; ok {
		return name
	}
	return "store_" + strconv.Itoa(category)
}
