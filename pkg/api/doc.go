// Package api provides the HTTP API server for backupnotify.
// It manages a token-protected server that accepts notification requests and serves metrics.
//
// Key components:
//   - API: Configures and runs the server with token authentication.
//   - RunHTTPServer: Serves until the context is cancelled, then shuts down gracefully.
//   - GetAPIAddr: Builds the listen address from host and port flags.
//
// Usage example:
//
//	a := api.New(token, api.GetAPIAddr(host, port))
//	a.RegisterFunc(notifyHandler.Path, notifyHandler.Handle)
//	if err := a.Start(ctx, true); err != nil {
//	    logrus.WithError(err).Fatal("API failed")
//	}
//
// Every registered path requires "Authorization: Bearer <token>"; only /health is public.
package api
