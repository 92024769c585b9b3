package entities

// BucketType is the GraphQL typename of a facet bucket
type BucketType string

const (
	BucketTypeScalar       BucketType = "ScalarBucket"
	BucketTypeRange        BucketType = "RangeBucket"
	BucketTypeStats        BucketType = "StatsBucket"
	BucketTypeCategoryView BucketType = "CategoryView"
)

// Bucket is one option of a facet. Fields are populated per Type.
type Bucket struct {
	Type  BucketType `json:"__typename"`
	Title string     `json:"title"`
	Count int        `json:"count"`

	// ScalarBucket, CategoryView
	ID string `json:"id,omitempty"`

	// CategoryView
	Name string `json:"name,omitempty"`
	Path string `json:"path,omitempty"`

	// RangeBucket
	From float64 `json:"from,omitempty"`
	To   float64 `json:"to,omitempty"`

	// StatsBucket
	Min float64 `json:"min,omitempty"`
	Max float64 `json:"max,omitempty"`
}

// Facet is a filterable attribute with its buckets
type Facet struct {
	Attribute string   `json:"attribute"`
	Title     string   `json:"title"`
	Type      string   `json:"type,omitempty"`
	Buckets   []Bucket `json:"buckets"`
}

// CategoryName maps a category facet value to its display name
type CategoryName struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Attribute string `json:"attribute"`
}

// FindFacet returns the facet for attribute, if present
func FindFacet(facets []Facet, attribute string) (Facet, bool) {
	for _, f := range facets {
		if f.Attribute == attribute {
			return f, true
		}
	}
	return Facet{}, false
}

// CategoryNames extracts display names from facets whose buckets are
// CategoryView buckets.
func CategoryNames(facets []Facet) []CategoryName {
	var names []CategoryName
	for _, facet := range facets {
		if len(facet.Buckets) == 0 || facet.Buckets[0].Type != BucketTypeCategoryView {
			continue
		}
		for _, b := range facet.Buckets {
			names = append(names, CategoryName{
				Name:      b.Name,
				Value:     b.Title,
				Attribute: facet.Attribute,
			})
		}
	}
	return names
}
