package fieldlogs

import "github.com/oneacrefund/fieldops-console/pkg/application"

var FieldLogsLink = application.NavigationItem{
	Name: "NavigationLinks.FieldLogs",
	Href: "/fieldlogs",
	Icon: "clipboard-list",
}

var NavItems = []application.NavigationItem{
	FieldLogsLink,
}
