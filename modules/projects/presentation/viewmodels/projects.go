package viewmodels

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Status    string `json:"status"`
	Site      string `json:"site"`
	Budget    string `json:"budget"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
