package entities

// AttributeInfo describes a sortable or filterable attribute
type AttributeInfo struct {
	Attribute string `json:"attribute"`
	Label     string `json:"label"`
	Numeric   bool   `json:"numeric"`
}

// AttributeMetadata lists the attributes shoppers can sort and filter on
type AttributeMetadata struct {
	Sortable           []AttributeInfo `json:"sortable"`
	FilterableInSearch []AttributeInfo `json:"filterableInSearch"`
}

// FilterableAttributes returns the attribute codes usable as URL filters
func (m *AttributeMetadata) FilterableAttributes() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.FilterableInSearch))
	for _, a := range m.FilterableInSearch {
		out = append(out, a.Attribute)
	}
	return out
}

// SortOption is a selectable sort order
type SortOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// PageSizeOption is a selectable page size
type PageSizeOption struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}
