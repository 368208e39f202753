// Package app is the application layer. It assembles layouts from their
// stored parts, runs the ad lifecycle and is the only component that
// orchestrates multiple repositories.
package app
