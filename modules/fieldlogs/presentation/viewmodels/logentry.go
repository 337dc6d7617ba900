package viewmodels

type LogEntry struct {
	ID           string `json:"id"`
	Category     string `json:"category"`
	Message      string `json:"message"`
	ActorName    string `json:"actor_name"`
	DeviceSerial string `json:"device_serial"`
	SiteName     string `json:"site_name"`
	CreatedAt    string `json:"created_at"`
}
