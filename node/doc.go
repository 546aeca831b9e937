// Package node assembles the blob store, network endpoint, downloader
// and optional docs engine into a single running node.
//
// A node owns its storage directory, a stable ed25519 identity and a
// private task runner. Blocking operations take a context; timeout
// variants abandon the task and report a timeout while the task keeps
// running to completion in the background.
package node
