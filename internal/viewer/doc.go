// Package viewer is the client side of the sync protocol: a session
// lifecycle manager that keeps one layout subscription alive across
// transport failures, and a screen state holder that folds incoming
// updates into the displayed layout.
package viewer
