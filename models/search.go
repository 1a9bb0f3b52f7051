package models

// SearchVector is the full-text expression indexed on meals and upcoming_meals.
// Queries must repeat it verbatim for postgres to use the GIN index.
const SearchVector = "to_tsvector('english', coalesce(title,'') || ' ' || coalesce(category,'') || ' ' || " +
	"coalesce(CAST(ingredients AS TEXT),'') || ' ' || coalesce(description,'') || ' ' || " +
	"coalesce(distributor_name,'') || ' ' || coalesce(distributor_email,''))"

// IngredientsColumn is the JSON array column; substring searches match its
// elements one by one.
const IngredientsColumn = "ingredients"

// SearchColumns are the curated fields covered by full-text search, used
// directly by the LIKE fallback on dialects without text search.
var SearchColumns = []string{
	"title", "category", IngredientsColumn, "description", "distributor_name", "distributor_email",
}
