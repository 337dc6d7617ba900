package farmers

import "github.com/oneacrefund/fieldops-console/pkg/application"

var FarmersLink = application.NavigationItem{
	Name: "NavigationLinks.Farmers",
	Href: "/farmers",
	Icon: "users",
}

var DuplicatesLink = application.NavigationItem{
	Name: "NavigationLinks.Duplicates",
	Href: "/farmers/duplicates",
	Icon: "copy",
}

var NavItems = []application.NavigationItem{
	FarmersLink,
	DuplicatesLink,
}
