package model

// Codelist is one IATI reference vocabulary document, e.g. "Currency" or
// "ActivityStatus". Codelists are refreshed wholesale from the downloaded
// XML index: a fetch replaces the stored document and all of its items.
//
// The XML download is used rather than the JSON one because the JSON
// variant has historically dropped attributes such as withdrawal markers.
type Codelist struct {
	// Name is the codelist name from the document's name attribute.
	Name string `json:"name"`

	// Element is the normalized <codelist> element.
	Element map[string]any `json:"element,omitempty"`

	// Items are the entries of this codelist.
	Items []CodelistItem `json:"items,omitempty"`
}

// CodelistItem is a single entry of a Codelist. Items are bulk-inserted per
// codelist fetch, never merged field by field.
type CodelistItem struct {
	// Code is the item's code value.
	Code string `json:"code,omitempty"`

	// Name is the item's display name.
	Name string `json:"name,omitempty"`

	// Withdrawn marks items the vocabulary no longer recommends.
	Withdrawn bool `json:"withdrawn,omitempty"`

	// Element is the normalized <codelist-item> element.
	Element map[string]any `json:"element,omitempty"`
}
