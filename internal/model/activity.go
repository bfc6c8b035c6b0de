package model

// Activity is one <iati-activity> element from a publisher file.
//
// The stored Element has its narrative and child-collection fields removed:
// narratives are relocated into Narrative rows and transactions, budgets,
// results, and document links into ActivityChild rows. This keeps the
// element small and makes the recurring collections queryable.
type Activity struct {
	// Identifier is the iati-identifier, the primary key. It must be a
	// non-empty string; elements without it are rejected during ingestion.
	Identifier string `json:"identifier"`

	// Element is the normalized <iati-activity> element with narrative and
	// child-collection fields removed.
	Element map[string]any `json:"element,omitempty"`
}

// Narrative is a free-text, language-tagged fragment hoisted out of an
// activity element. The same tag can recur at arbitrary depth in the IATI
// schema, so each row remembers where in the original document it occurred.
type Narrative struct {
	// ActivityID references the owning Activity. Narrative rows are
	// replaced wholesale each time their activity is ingested.
	ActivityID string `json:"activity_id"`

	// Path is a bracketed accessor chain reproducing the structural
	// location of the narrative, e.g. "['title']['narrative'][0]".
	Path string `json:"path"`

	// Lang is the language tag, defaulting to the nearest ancestor's
	// xml:lang attribute and then to the configured fallback.
	Lang string `json:"lang,omitempty"`

	// Text is the narrative content.
	Text string `json:"text"`
}

// ChildKind identifies an activity child collection.
type ChildKind string

// Child collections split out of an activity element. The source XML always
// provides the complete current set, so each ingestion fully replaces the
// prior rows of a kind.
const (
	ChildTransaction  ChildKind = "transaction"
	ChildBudget       ChildKind = "budget"
	ChildResult       ChildKind = "result"
	ChildDocumentLink ChildKind = "document-link"
)

// ChildKinds lists all child collections in a stable order.
var ChildKinds = []ChildKind{ChildTransaction, ChildBudget, ChildResult, ChildDocumentLink}

// ActivityChild is one element of an activity child collection.
type ActivityChild struct {
	// ActivityID references the owning Activity.
	ActivityID string `json:"activity_id"`

	// Kind identifies which collection the element belongs to.
	Kind ChildKind `json:"kind"`

	// Element is the normalized child element.
	Element any `json:"element"`
}
