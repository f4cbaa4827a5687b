// Package httpserver is the JSON gateway for Vesta, routed with chi.
//
// Stream mutations name their caller in the X-Vesta-Signer header, which
// the host in front of the server is expected to authenticate. Errors are
// returned as {"error": tag, "message": text} with a status derived from
// the tag.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()})
//	s := httpserver.New(rt, nil)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
