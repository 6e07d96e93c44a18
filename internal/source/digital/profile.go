package digital

// Profile describes the column layout of a receipt CSV export.
type Profile struct {
	Name        string
	IDCol       string
	MerchantCol string
	AmountCol   string
	DateCol     string
	StatusCol   string // optional
	MatchedCol  string // optional
	CategoryCol string // optional
}

func (p Profile) requiredCols() []string {
	return []string{p.IDCol, p.MerchantCol, p.AmountCol, p.DateCol}
}

// profiles are tried in order; header names are compared case-insensitively.
var profiles = []Profile{
	{
		Name:        "app",
		IDCol:       "id",
		MerchantCol: "merchant",
		AmountCol:   "amount",
		DateCol:     "date",
		StatusCol:   "status",
		MatchedCol:  "matchedtransactionid",
		CategoryCol: "category",
	},
	{
		Name:        "pt",
		IDCol:       "referência",
		MerchantCol: "comerciante",
		AmountCol:   "montante",
		DateCol:     "data",
		StatusCol:   "estado",
		CategoryCol: "categoria",
	},
}
