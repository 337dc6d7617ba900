package viewmodels

// Farmer is the row shape the dashboard table renders.
type Farmer struct {
	ID          string `json:"id"`
	OafID       string `json:"oaf_id"`
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	Gender      string `json:"gender"`
	Status      string `json:"status"`
	LoanBalance string `json:"loan_balance"`
	Site        string `json:"site"`
	District    string `json:"district"`
	Pod         string `json:"pod"`
	Group       string `json:"group"`
	CreatedAt   string `json:"created_at"`
}

// DuplicatePair pairs two farmer rows with their match score.
type DuplicatePair struct {
	Primary    Farmer  `json:"primary"`
	Secondary  Farmer  `json:"secondary"`
	Similarity float64 `json:"similarity"`
}
