package domain

// Zone is one row of the TLC taxi zone lookup table. LocationID is the
// unique join key; a trip references it twice, once per endpoint.
type Zone struct {
	LocationID int32  `json:"location_id"`
	Borough    string `json:"borough"`
	Zone       string `json:"zone"`
}

// PaymentDescriptions maps the TLC payment-type code to its label. The table
// is static reference data, compiled in rather than loaded. Codes outside
// this set stay unmatched after the join; they are never coerced to
// "Unknown".
var PaymentDescriptions = map[int32]string{
	0: "Credit Card",
	1: "Cash",
	2: "No Charge",
	3: "Dispute",
	4: "Unknown",
}

// PaymentDescription resolves a payment-type code. The boolean follows the
// map-lookup convention: false means the code has no label.
func PaymentDescription(code int32) (string, bool) {
	desc, ok := PaymentDescriptions[code]
	return desc, ok
}
