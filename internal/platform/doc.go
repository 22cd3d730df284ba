// Package platform contains OS/platform integration and external tooling glue:
// filesystem helpers, filename sanitization, source URL validation and the
// yt-dlp backed source resolver.
package platform
