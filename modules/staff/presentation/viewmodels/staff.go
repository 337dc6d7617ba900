package viewmodels

type Staff struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	Site      string `json:"site"`
	CreatedAt string `json:"created_at"`
}
