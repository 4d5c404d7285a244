package visio

// Version is the bridge release version. Overridden at build time via
// -ldflags "-X github.com/Therealkorris/MCP.Version=...".
var Version = "0.1.0"
