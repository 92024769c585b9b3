package entities

// Category is a node of the storefront category forest
type Category struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	URLPath  string   `json:"urlPath"`
	URLKey   string   `json:"urlKey,omitempty"`
	ParentID string   `json:"parentId,omitempty"`
	Level    int      `json:"level,omitempty"`
	Children []string `json:"children"`
}

// CategoryQuery scopes a categories fetch
type CategoryQuery struct {
	IDs        []string `json:"ids"`
	Roles      []string `json:"roles"`
	Depth      int      `json:"depth"`
	StartLevel int      `json:"startLevel"`
}
