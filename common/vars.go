package common

// PackageName is used as the metrics namespace.
const PackageName = "luw_registry"

// Version is overridden at build time with -ldflags "-X ...common.Version=...".
var Version = "dev"
