// Package config loads and caches tabletop grid configurations.
//
// Configurations live as files in a single directory. Both JSON and YAML
// are accepted:
//
//	{"name": "standard", "description": "5x5 table", "width": 5, "height": 5}
//
//	name: wide
//	description: wide table
//	width: 10
//	height: 6
//
// A configuration is addressed by its file name with or without the
// extension, so "wide" and "wide.yaml" load the same table. Files that
// fail validation are skipped by ListConfigs and rejected by LoadConfig.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gridConfig, err := manager.LoadConfig("wide")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// standard.* when present, otherwise the first valid file, otherwise 5x5
//	defaultConfig := manager.GetDefault()
package config
