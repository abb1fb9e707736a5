// Package registry tracks installed Elasticsearch versions under the esvm
// home directory and manages the active-version pointer.
//
// # Layout
//
// Each installed version is a directory named elasticsearch-<version>
// directly under the home directory. The active version is marked by a
// single symlink named elasticsearch whose target is one of those
// directories. The registry never creates version directories itself;
// that is the release downloader's job. It only enumerates them, resolves
// the pointer, relinks it, and removes version trees.
//
// # Versions
//
// Version strings are exactly three dot-separated components. The first
// two must be non-negative integers; the third is an integer or the
// literal wildcard "*". A wildcard version is a selector: operations that
// accept one resolve it to the highest installed version of that
// major.minor line.
//
// # Concurrency
//
// The registry assumes a single interactive invocation at a time.
// Concurrent invocations racing on Use/Remove are not guarded against,
// but the relink itself is atomic (symlink-to-temp then rename), so a
// reader never observes a missing pointer.
package registry
