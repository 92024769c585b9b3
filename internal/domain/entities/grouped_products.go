package entities

// ProductGroup is one named section of a grouped listing
type ProductGroup struct {
	Name        string    `json:"name"`
	Value       string    `json:"value"`
	TotalCount  int       `json:"total_count"`
	Items       []Product `json:"items"`
	ViewMoreURL string    `json:"view_more_url,omitempty"`
}

// GroupedProducts keeps groups in the order their requests were issued
type GroupedProducts struct {
	Groups []ProductGroup `json:"groups"`
}

// Put adds g, replacing an existing group with the same name in place
func (gp *GroupedProducts) Put(g ProductGroup) {
	for i := range gp.Groups {
		if gp.Groups[i].Name == g.Name {
			gp.Groups[i] = g
			return
		}
	}
	gp.Groups = append(gp.Groups, g)
}

// Get returns the group with the given name
func (gp *GroupedProducts) Get(name string) (ProductGroup, bool) {
	if gp == nil {
		return ProductGroup{}, false
	}
	for _, g := range gp.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return ProductGroup{}, false
}

// Len returns the number of groups
func (gp *GroupedProducts) Len() int {
	if gp == nil {
		return 0
	}
	return len(gp.Groups)
}

// GroupValue is one configured group of the lookup-table grouping source
type GroupValue struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}
