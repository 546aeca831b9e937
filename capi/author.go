package capi

import (
	"github.com/arkavo-org/iroh-go/docs"
)

// AuthorCreate generates a fresh author keypair.
func AuthorCreate(cb AuthorCallback) {
	a, err := docs.NewAuthor()
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(a.ID(), a.Secret(), cb.Userdata)
	}
}

// AuthorIDFromSecret derives the public identifier from a secret.
func AuthorIDFromSecret(secret AuthorSecret) AuthorID {
	return docs.AuthorFromSecret(secret).ID()
}

// AuthorFromHex reconstructs an author keypair from a hex secret.
func AuthorFromHex(hexSecret string, cb AuthorCallback) {
	if err := checkUTF8("secret_hex", hexSecret); err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	a, err := docs.AuthorFromHex(hexSecret)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(a.ID(), a.Secret(), cb.Userdata)
	}
}

// AuthorSecretToHex encodes a secret for storage.
func AuthorSecretToHex(secret AuthorSecret) string {
	return secret.Hex()
}

// AuthorIDToHex encodes a public identifier.
func AuthorIDToHex(id AuthorID) string {
	return id.Hex()
}

// AuthorImport registers an author with a node's docs engine so it
// survives restarts.
func AuthorImport(h NodeHandle, secret AuthorSecret, cb StatusCallback) {
	n, err := resolveNode(h)
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	engine, err := n.Docs()
	if err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if err := engine.ImportAuthor(docs.AuthorFromSecret(secret)); err != nil {
		fail(cb.OnFailure, cb.Userdata, err)
		return
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(cb.Userdata)
	}
}
