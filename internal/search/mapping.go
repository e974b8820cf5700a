package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for book documents.
//
// Titles and authors use the standard analyzer rather than an English
// stemmer: libraries mix languages and stemming mangles names.
// Owner and ISBN are keywords so they can be matched exactly.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	text := func(store bool) *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = store
		return fm
	}
	kw := func(store bool) *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = store
		return fm
	}

	docMapping.AddFieldMappingsAt("title", text(true))
	docMapping.AddFieldMappingsAt("author", text(true))
	docMapping.AddFieldMappingsAt("publisher", text(false))

	docMapping.AddFieldMappingsAt("user_id", kw(false))
	docMapping.AddFieldMappingsAt("isbn", kw(false))
	docMapping.AddFieldMappingsAt("status", kw(true))

	updated := bleve.NewNumericFieldMapping()
	updated.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updated)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}
