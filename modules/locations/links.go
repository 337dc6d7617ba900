package locations

import "github.com/oneacrefund/fieldops-console/pkg/application"

var LocationsLink = application.NavigationItem{
	Name: "NavigationLinks.Locations",
	Href: "/locations/sites",
	Icon: "map-pin",
	Children: []application.NavigationItem{
		{Name: "NavigationLinks.Sites", Href: "/locations/sites"},
		{Name: "NavigationLinks.Districts", Href: "/locations/districts"},
		{Name: "NavigationLinks.Pods", Href: "/locations/pods"},
		{Name: "NavigationLinks.Groups", Href: "/locations/groups"},
	},
}

var NavItems = []application.NavigationItem{
	LocationsLink,
}
