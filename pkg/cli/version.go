package cli

// Version is overridden at build time with -ldflags "-X ...cli.Version=x.y.z".
var Version = "0.1.0"

// Repo is the GitHub repository releases are fetched from.
const Repo = "harumami/utokyo-FSC-IS4029L1-assignment-i1"
