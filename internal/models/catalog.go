// internal/models/catalog.go
package models

// Record is a single row returned by a catalog lookup, field name to value.
type Record map[string]interface{}

// LookupResult is the outcome of one structured lookup. Data is either a
// Record or a []Record; RowCount of zero means nothing matched, which is not
// an error.
type LookupResult struct {
	Data     interface{} `json:"data"`
	RowCount int         `json:"rowCount"`
}

// Empty reports whether the lookup matched no rows.
func (r LookupResult) Empty() bool {
	return r.RowCount == 0 || r.Data == nil
}

// SingleRecord returns the result as a Record when it holds exactly one.
func (r LookupResult) SingleRecord() (Record, bool) {
	rec, ok := r.Data.(Record)
	return rec, ok
}

// Records returns the result as a list of Records.
func (r LookupResult) Records() ([]Record, bool) {
	recs, ok := r.Data.([]Record)
	return recs, ok
}
