package decomp

// Version is the library version reported by the CLI and the HTTP adapter.
const Version = "0.3.0"
