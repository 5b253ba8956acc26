// Package registry keeps the live canvases of the service.
//
// Components:
//   - Manager: create, look up, list and close canvases, bounded by a limit
//   - Seeder: creates canvases from layout files on startup
//
// Every canvas created by the manager shares its logger and, when attached,
// its metrics collector.
//
// Example Usage:
//
//	manager := registry.NewManager(registry.Options{MaxCanvases: 64}).WithMetrics(metrics)
//	c, err := manager.Create("workspace", windows)
//	c, err = manager.Get(c.ID())
//	err = manager.Close(c.ID())
package registry
