package projects

import "github.com/oneacrefund/fieldops-console/pkg/application"

var ProjectsLink = application.NavigationItem{
	Name: "NavigationLinks.Projects",
	Href: "/projects",
	Icon: "briefcase",
}

var NavItems = []application.NavigationItem{
	ProjectsLink,
}
