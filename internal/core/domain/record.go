package domain

// Fields is the loosely typed field bag of a store record, keyed by the
// field's display name.
type Fields map[string]any

// Record is a store record as returned by the remote API.
type Record struct {
	ID          string `json:"id"`
	CreatedTime string `json:"createdTime,omitempty"`
	Fields      Fields `json:"fields"`
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type SortSpec struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction,omitempty"`
}

// ListOptions narrows a list call. Zero values mean "store default".
type ListOptions struct {
	Filter     string
	MaxRecords int
	PageSize   int
	Sort       []SortSpec
	View       string
}

// Tables names the store tables the portal reads and writes.
type Tables struct {
	Clients   string
	Contracts string
	Videos    string
	Team      string
	Feedbacks string
}

// RecordBundle is a client's raw records as stored, with no field mapping.
// Client is nil when the lookup matched nothing.
type RecordBundle struct {
	Client    *Record  `json:"client"`
	Videos    []Record `json:"videos"`
	Contracts []Record `json:"contracts"`
	Team      []Record `json:"teamMembers"`
}
