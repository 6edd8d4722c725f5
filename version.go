package scenic

// Version is the release version, set here for builds without VCS info.
const Version = "0.1.0"
