// Package connection provides eigenlog-cli's two ways of reaching a log
// store: an HTTP client against a running eigenlog-server (--url), and a
// direct storage.Engine opened over a local Badger directory (--database).
package connection
