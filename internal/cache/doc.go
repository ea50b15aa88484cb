/*
Package cache is the caching engine shared by the project graph and the
action executors.

It persists two kinds of state:

  - the project discovery map produced by globbing, keyed by the list of
    glob patterns, so a later run with the same patterns skips the
    filesystem walk entirely;
  - per-target run state and fingerprint manifests, so an action whose
    fingerprint has been seen before is reported as cached instead of
    running again.

Two engines implement Engine: FileEngine writes JSON files under the
workspace's `.monogrid/cache` directory, MemoryEngine keeps everything in
memory for tests. Flight serializes concurrent claims of the same
fingerprint so two equivalent actions never both do the work.
*/
package cache
