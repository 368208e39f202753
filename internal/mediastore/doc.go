// Package mediastore issues time-limited signed upload URLs for ad media
// and builds the public URLs embedded in ad content. The media host itself
// is external; it shares the signing key and verifies uploads with Verify.
package mediastore
