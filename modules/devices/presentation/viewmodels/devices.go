package viewmodels

type Device struct {
	ID           string `json:"id"`
	SerialNumber string `json:"serial_number"`
	Model        string `json:"model"`
	IMEI         string `json:"imei"`
	Status       string `json:"status"`
	AssignedTo   string `json:"assigned_to"`
	Site         string `json:"site"`
	CreatedAt    string `json:"created_at"`
}
