// Package release downloads, verifies, and unpacks Elasticsearch release
// archives.
//
// A release is fetched as a gzipped tarball plus a detached checksum file
// from a list of mirror base URLs tried in order. Newer release layouts
// publish a .sha512 next to the archive, older ones a .sha1; both are
// accepted, .sha512 preferred. The archive is streamed through the hash
// while it downloads, so verification costs no second read.
//
// Extraction strips the leading elasticsearch-<version>/ path component
// and lands in a temporary directory that is renamed into place only
// after the whole archive unpacked, so a half-extracted version is never
// visible to the registry.
package release
