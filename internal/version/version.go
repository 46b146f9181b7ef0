package version

// Version is stamped at build time via -ldflags "-X roster/internal/version.Version=...".
var Version = "dev"
