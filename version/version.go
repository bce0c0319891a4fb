package version

// Version is the current vitals release
var Version = "0.1.0"
