package devices

import "github.com/oneacrefund/fieldops-console/pkg/application"

var DevicesLink = application.NavigationItem{
	Name: "NavigationLinks.Devices",
	Href: "/devices",
	Icon: "device-mobile",
}

var NavItems = []application.NavigationItem{
	DevicesLink,
}
