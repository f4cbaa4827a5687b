// Package runtime wires storage, the asset ledger and configuration into a
// single-node vesta instance used by the services and servers.
//
//	rt, err := runtime.Open(runtime.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	if err != nil { ... }
//	defer rt.Close()
package runtime
