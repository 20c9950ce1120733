package resource

import "net/url"

// Filters are the request parameters of a list query. The zero value lists
// live records with the backend defaults.
type Filters struct {
	// IncludeDeleted asks the backend to include soft-deleted rows.
	IncludeDeleted bool

	// Extra carries resource-specific parameters (e.g. instrument_id on
	// schedules, unread on notifications).
	Extra url.Values
}

// Values returns the filters as query parameters.
func (f Filters) Values() url.Values {
	values := url.Values{}
	for key, vals := range f.Extra {
		for _, v := range vals {
			values.Add(key, v)
		}
	}
	if f.IncludeDeleted {
		values.Set("include_deleted", "true")
	}
	return values
}

// Encode returns a canonical encoding of the filters. url.Values encodes in
// sorted key order, so equal filters always produce equal cache keys.
func (f Filters) Encode() string {
	return f.Values().Encode()
}
