package fieldcodec

// Field declares one string field of the schema.
type Field struct {
	Name string
	// Indexed makes the whole value searchable as one term.
	Indexed bool
	// Stored keeps the original value for retrieval.
	Stored bool
	// DocValues keeps a sortable column of the value.
	DocValues bool
	// MultiValued allows more than one value per document.
	MultiValued bool
	// SortMissingFirst and SortMissingLast pin documents without a value to
	// one end of every sort, in both directions.
	SortMissingFirst bool
	SortMissingLast  bool
}

// Hit is one document of a sorted result.
type Hit struct {
	Doc uint32
	// Fields holds the stored values by field name. Fields the document has
	// no value for are absent.
	Fields map[string][]string
	// Sort is the sort key in transport form, nil when the document has no
	// value for the sort field. Pass it unchanged to Merge.
	Sort *string
}

// SortResult is the outcome of Sort.
type SortResult struct {
	// Total is the number of live documents considered.
	Total int
	Hits  []Hit
}

// Value is the column value of one document.
type Value struct {
	Doc    uint32
	Value  string
	Exists bool
}

// ShardHits is the sorted hit list reported by one shard.
type ShardHits struct {
	Name string
	Hits []Hit
}

// MergedHit is a hit in the merged order, tagged with its shard.
type MergedHit struct {
	Shard string
	Hit
}

// Representation is one physical form a value takes in the index.
type Representation struct {
	// Kind is one of "stored", "sorted" or "sorted_set".
	Kind    string
	Field   string
	Value   string
	Boost   float32
	Indexed bool
	Stored  bool
	Term    []byte
	Bytes   []byte
}
