// Package store implements the content-addressed blob store.
//
// Objects are addressed by the hex sha256 of their content and laid out
// on disk with git-style sharding:
//
//	root/
//	  objects/
//	    ab/cd123...  (zstd-compressed content)
//	  tags/
//	    my-tag       (plain text: "<hash> <format>")
//
// Tags pin content so garbage collection cannot reclaim it until the tag
// is removed. A small in-memory cache fronts the object directory.
package store
