package models

// GraphQL view models for the catalog read surface. Ints are int32 to match
// graphql-go's Int scalar; money stays in integer minor units.

type Category struct {
	ID         int32
	ExternalID *string
	Name       string
	Ordinal    int32
}

type Item struct {
	ID            int32
	ExternalID    *string
	Name          string
	Description   string
	Ordinal       int32
	Variations    []*Variation
	ModifierLists []*ItemModifierList
	Images        []*Image
}

type Variation struct {
	ID              int32
	ExternalID      *string
	Name            string
	Ordinal         int32
	BaseAmount      int32
	EffectiveAmount int32
	Currency        string
}

type ItemModifierList struct {
	ID            int32
	ExternalID    *string
	Name          string
	SelectionType string
	MinSelected   int32
	MaxSelected   int32
	Modifiers     []*Modifier
}

type Modifier struct {
	ID              int32
	ExternalID      *string
	Name            string
	Ordinal         int32
	BaseAmount      int32
	EffectiveAmount int32
	Currency        string
}

type Image struct {
	ID         int32
	ExternalID *string
	URL        string
	Caption    string
}

type ItemSearchResult struct {
	TotalCount int32
	Items      []*Item
}
