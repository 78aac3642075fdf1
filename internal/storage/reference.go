package storage

// ReferenceTables maps each distinguished free-text field of an extrusion
// log to the lookup table that caches its distinct values for autocomplete.
// Rows are inserted lazily when a log carrying a new value is written and
// reclaimed by the cleanup job once nothing references them.
var ReferenceTables = map[string]string{
	"customer":      "customers",
	"dieCode":       "dies",
	"item":          "items",
	"lotNumberCode": "lot_numbers",
	"billetType":    "billet_types",
	"code":          "codes",
	"coolingMethod": "cooling_methods",
}

// SuggestionData is the full set of autocomplete lists served to the
// dashboard. Plants and machines are only populated for admin callers.
type SuggestionData struct {
	Customers      []string `json:"customers"`
	Dies           []string `json:"dies"`
	Items          []string `json:"items"`
	LotNumbers     []string `json:"lotNumbers"`
	BilletTypes    []string `json:"billetTypes"`
	Codes          []string `json:"codes"`
	CoolingMethods []string `json:"coolingMethods"`
	Plants         []string `json:"plants,omitempty"`
	Machines       []string `json:"machines,omitempty"`
}
