package viewmodels

type Site struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Region    string `json:"region"`
	Current   bool   `json:"current"`
	CreatedAt string `json:"created_at"`
}

type District struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Pod struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	District string `json:"district"`
}

type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Pod         string `json:"pod"`
	MemberCount int    `json:"member_count"`
}
