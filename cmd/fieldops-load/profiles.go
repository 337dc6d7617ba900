package main

import (
	"fmt"
	"time"
)

type target struct {
	Endpoint string
	Method   string
	Path     string
	Weight   int
}

type profile struct {
	Name         string
	VUs          int
	Duration     time.Duration
	DefaultP99MS int
	Targets      []target
}

// readTargets is the browse mix: mostly the farmer register, then the
// smaller collections and one duplicates page.
func readTargets() []target {
	return []target{
		{Endpoint: "farmers_list", Method: "GET", Path: "/farmers?page=1&page_size=20", Weight: 40},
		{Endpoint: "staff_list", Method: "GET", Path: "/staff", Weight: 15},
		{Endpoint: "devices_list", Method: "GET", Path: "/devices", Weight: 15},
		{Endpoint: "projects_list", Method: "GET", Path: "/projects", Weight: 10},
		{Endpoint: "fieldlogs_list", Method: "GET", Path: "/fieldlogs?page=1", Weight: 10},
		{Endpoint: "duplicates_page", Method: "GET", Path: "/farmers/duplicates?page=1", Weight: 10},
	}
}

func builtinProfile(name string) (profile, error) {
	switch name {
	case "console_read_small":
		return profile{
			Name:         name,
			VUs:          5,
			Duration:     time.Minute,
			DefaultP99MS: 500,
			Targets:      readTargets(),
		}, nil
	case "console_read_large":
		return profile{
			Name:         name,
			VUs:          25,
			Duration:     2 * time.Minute,
			DefaultP99MS: 800,
			Targets:      readTargets(),
		}, nil
	case "console_read_reload":
		// Adds cache-busting reloads so the upstream round trip is on
		// the hot path, not just the in-memory working set.
		targets := append(readTargets(),
			target{Endpoint: "farmers_reload", Method: "POST", Path: "/farmers/reload", Weight: 5},
			target{Endpoint: "staff_reload", Method: "POST", Path: "/staff/reload", Weight: 5},
		)
		return profile{
			Name:         name,
			VUs:          10,
			Duration:     2 * time.Minute,
			DefaultP99MS: 1500,
			Targets:      targets,
		}, nil
	default:
		return profile{}, fmt.Errorf("unknown profile %q (console_read_small|console_read_large|console_read_reload)", name)
	}
}
