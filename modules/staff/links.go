package staff

import "github.com/oneacrefund/fieldops-console/pkg/application"

var StaffLink = application.NavigationItem{
	Name: "NavigationLinks.Staff",
	Href: "/staff",
	Icon: "id-badge",
}

var NavItems = []application.NavigationItem{
	StaffLink,
}
