// Package rubric holds the fixed scoring rubric: five categories, each split
// into groups from which the oracle must pick exactly one scored item.
package rubric

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rubric.yaml
var defaultRubric []byte

// Category is one of the five top-level evaluation dimensions
type Category string

const (
	Location    Category = "location"
	Condition   Category = "condition"
	BuildingAge Category = "buildingAge"
	Layout      Category = "layout"
	Surrounding Category = "surrounding"
)

var categoryOrder = []Category{Location, Condition, BuildingAge, Layout, Surrounding}

var categoryTitles = map[Category]string{
	Location:    "地理位置",
	Condition:   "房屋状况",
	BuildingAge: "楼龄",
	Layout:      "户型与朝向",
	Surrounding: "周边配套",
}

// Categories returns all categories in their fixed evaluation order
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Title returns the section heading used in the oracle instructions
func (c Category) Title() string {
	return categoryTitles[c]
}

// ScoresField returns the oracle reply key for the category, e.g. "locationScores"
func (c Category) ScoresField() string {
	return string(c) + "Scores"
}

// Item is a single scoring option with an inclusive point range
type Item struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Min   int    `yaml:"min" json:"min"`
	Max   int    `yaml:"max" json:"max"`
	Group string `yaml:"group" json:"group"`
}

// Key is the item identifier the oracle is asked to use: "<id>.<label> <min>-<max>"
func (i Item) Key() string {
	return fmt.Sprintf("%s.%s %d-%d", i.ID, i.Label, i.Min, i.Max)
}

// Line renders the item as a scoring instruction: "<id>.<label>: <min>-<max>分"
func (i Item) Line() string {
	return fmt.Sprintf("%s.%s: %d-%d分", i.ID, i.Label, i.Min, i.Max)
}

// Contains reports whether v lies within the item's range
func (i Item) Contains(v float64) bool {
	return v >= float64(i.Min) && v <= float64(i.Max)
}

// Group is a named sub-dimension and its items in declaration order
type Group struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Catalog is the read-only rubric, available both flat and grouped
type Catalog struct {
	flat   map[Category][]Item
	groups map[Category][]Group
}

// Parse builds a catalog from the flat YAML shape and validates it
func Parse(data []byte) (*Catalog, error) {
	var raw map[Category][]Item
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rubric: %w", err)
	}

	c := &Catalog{
		flat:   make(map[Category][]Item, len(categoryOrder)),
		groups: make(map[Category][]Group, len(categoryOrder)),
	}

	for cat := range raw {
		if _, ok := categoryTitles[cat]; !ok {
			return nil, fmt.Errorf("unknown rubric category %q", cat)
		}
	}

	for _, cat := range categoryOrder {
		items := raw[cat]
		if len(items) == 0 {
			return nil, fmt.Errorf("rubric category %s has no items", cat)
		}

		seen := make(map[string]bool, len(items))
		groupIndex := make(map[string]int)
		var groups []Group
		for _, item := range items {
			switch {
			case item.ID == "" || item.Group == "":
				return nil, fmt.Errorf("rubric category %s: item %q missing id or group", cat, item.Label)
			case strings.Contains(item.ID, "."):
				return nil, fmt.Errorf("rubric category %s: item id %q must not contain '.'", cat, item.ID)
			case seen[item.ID]:
				return nil, fmt.Errorf("rubric category %s: duplicate item id %s", cat, item.ID)
			case item.Min > item.Max:
				return nil, fmt.Errorf("rubric category %s: item %s has min %d > max %d", cat, item.ID, item.Min, item.Max)
			}
			seen[item.ID] = true

			idx, ok := groupIndex[item.Group]
			if !ok {
				idx = len(groups)
				groupIndex[item.Group] = idx
				groups = append(groups, Group{Name: item.Group})
			}
			groups[idx].Items = append(groups[idx].Items, item)
		}

		c.flat[cat] = items
		c.groups[cat] = groups
	}

	return c, nil
}

var defaultCatalog = mustParse(defaultRubric)

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the embedded process-wide rubric
func Default() *Catalog {
	return defaultCatalog
}

// Flat returns the category's items, each tagged with its group
func (c *Catalog) Flat(cat Category) []Item {
	items := c.flat[cat]
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Groups returns the category's groups in order of first appearance
func (c *Catalog) Groups(cat Category) []Group {
	groups := c.groups[cat]
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Group{Name: g.Name, Items: append([]Item(nil), g.Items...)}
	}
	return out
}

// Lookup resolves an oracle key ("<id>.<label> <min>-<max>" or a bare id)
// to the rubric item with that id
func (c *Catalog) Lookup(cat Category, key string) (Item, bool) {
	id := strings.TrimSpace(key)
	if dot := strings.Index(id, "."); dot >= 0 {
		id = id[:dot]
	}
	id = strings.TrimSpace(id)
	for _, item := range c.flat[cat] {
		if strings.EqualFold(item.ID, id) {
			return item, true
		}
	}
	return Item{}, false
}

// Render writes the category's scoring instructions
func (c *Catalog) Render(cat Category) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s评分规则\n", cat.Title())
	for _, g := range c.groups[cat] {
		fmt.Fprintf(&b, "- 【%s】\n", g.Name)
		for _, item := range g.Items {
			fmt.Fprintf(&b, "    %s\n", item.Line())
		}
	}
	return b.String()
}

// RenderAll renders every category in fixed order
func (c *Catalog) RenderAll() string {
	parts := make([]string, 0, len(categoryOrder))
	for _, cat := range categoryOrder {
		parts = append(parts, c.Render(cat))
	}
	return strings.Join(parts, "\n")
}
