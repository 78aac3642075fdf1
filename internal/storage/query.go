package storage

// Deleted-state filter for log listings.
const (
	DeletedExclude = "exclude"
	DeletedOnly    = "only"
	DeletedBoth    = "both"
)

// SortKey is one entry of an ordered sort specification. ID is a payload
// field id ("date", "startTime", ...), not a column name; the query builder
// maps it through a whitelist.
type SortKey struct {
	ID   string `json:"id"`
	Desc bool   `json:"desc"`
}

// LogFilter is the optional-filter set for a log listing. Zero values mean
// "not filtered". DateFrom == DateTo collapses to an equality match.
type LogFilter struct {
	Date         string
	DateFrom     string
	DateTo       string
	Plant        string
	Machine      string
	DieCode      string
	LotNumber    string
	Result       string
	RemarkSearch string
	Deleted      string // DeletedExclude (default), DeletedOnly, DeletedBoth
}
