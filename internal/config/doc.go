// Package config resolves the network-scoped configuration a deployment run
// operates under. A NetworkProfile is assembled from three layers, lowest
// precedence first: the built-in network definitions, an optional networks.hcl
// file, and an optional credentials.yaml file overlaid by environment
// variables. Resolution is atomic: either every required field is present and
// a complete profile is returned, or a ConfigError is returned and no profile
// escapes.
package config
