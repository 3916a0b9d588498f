package catalog

// Record is a raw weapon entry as served by the catalog API.
// Every field is optional; Normalize decides what survives.
type Record struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Weight      float64   `json:"weight,omitempty"`
	Attack      []Stat    `json:"attack,omitempty"`
	Defence     []Stat    `json:"defence,omitempty"`
	ScalesWith  []Scaling `json:"scalesWith,omitempty"`
	Required    []Stat    `json:"requiredAttributes,omitempty"`
}

// Stat is a named numeric value, e.g. {"name": "Phy", "amount": 115}.
type Stat struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Scaling associates an attribute with a scaling grade, e.g. {"name": "Str", "scaling": "D"}.
type Scaling struct {
	Name    string `json:"name"`
	Scaling string `json:"scaling"`
}

// Envelope is the top-level response body of the weapons endpoint.
type Envelope struct {
	Success *bool    `json:"success,omitempty"`
	Count   int      `json:"count,omitempty"`
	Total   int      `json:"total,omitempty"`
	Data    []Record `json:"data"`
}
