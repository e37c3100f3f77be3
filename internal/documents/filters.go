package documents

import (
	"net/url"
	"strconv"
)

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored. HasExtraction selects documents with (true) or
// without (false) an attached extraction record; the approval queue is
// pending documents with HasExtraction set.
type Filters struct {
	Status        *Status `json:"status,omitempty"`
	Tag           *Tag    `json:"tag,omitempty"`
	UploadedBy    *string `json:"uploaded_by,omitempty"`
	HasExtraction *bool   `json:"has_extraction,omitempty"`
}

// Match reports whether the document satisfies every set filter.
func (f Filters) Match(d *Document) bool {
	if f.Status != nil && d.Status != *f.Status {
		return false
	}
	if f.Tag != nil && d.Tag != *f.Tag {
		return false
	}
	if f.UploadedBy != nil && d.UploadedBy != *f.UploadedBy {
		return false
	}
	if f.HasExtraction != nil && (d.Extracted != nil) != *f.HasExtraction {
		return false
	}
	return true
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		status := Status(s)
		f.Status = &status
	}

	if t := values.Get("tag"); t != "" {
		tag := Tag(t)
		f.Tag = &tag
	}

	if u := values.Get("uploaded_by"); u != "" {
		f.UploadedBy = &u
	}

	if h := values.Get("has_extraction"); h != "" {
		if v, err := strconv.ParseBool(h); err == nil {
			f.HasExtraction = &v
		}
	}

	return f
}
