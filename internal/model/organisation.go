package model

// Organisation is one <iati-organisation> record published through the
// registry. The registry knows an organisation under two different names:
// the long-form organisation-identifier (the primary key here) and a short
// abbreviation ("handle") used to query the registry's search API.
//
// Design decision: We keep the normalized XML element as an opaque
// map[string]any rather than modelling every IATI field because the schema
// is large, versioned, and inconsistently used by publishers. Fields the
// pipeline needs (identifiers, narratives) are extracted explicitly; the
// rest travels as-is and is stored as JSON.
type Organisation struct {
	// Identifier is the registry's organisation-identifier, e.g. "XM-DAC-41114".
	// It is the primary key; an Organisation row is only created once this
	// value is known.
	Identifier string `json:"identifier"`

	// Abbreviation is the registry handle used for lookups, e.g. "undp".
	// Many registry operations accept only the handle, so it is stored
	// alongside the identifier.
	Abbreviation string `json:"abbreviation,omitempty"`

	// Element is the normalized <iati-organisation> element.
	Element map[string]any `json:"element,omitempty"`
}

// OrganisationAbbreviation is a registry handle observed in the
// organisation list. Handles and Organisations are different entities:
// a handle row exists as soon as the registry lists it, long before the
// organisation-identifier is known from a publisher file.
type OrganisationAbbreviation struct {
	// Abbreviation is the registry handle, the primary key.
	Abbreviation string `json:"abbreviation"`

	// Withdrawn is set when the handle disappears from the registry list.
	// It is cleared again if the handle comes back in a later refresh.
	Withdrawn bool `json:"withdrawn"`
}
