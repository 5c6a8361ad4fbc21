// SPDX-License-Identifier: MPL-2.0

// Package store runs read-modify-write transactions against a Cauldron
// working copy.
//
// A transaction is an ordered pipeline: acquire the transaction lock,
// prepare the working copy, fetch and hard-reset it to the remote (or
// bootstrap an empty remote), load the document, apply the caller's
// mutation, then persist, commit, tag and push. Nothing is written to the
// working copy before the mutation has fully succeeded, and a failure
// before the push resets the working copy to the fetched state.
//
// A rejected push is surfaced as a SyncError and never retried; the next
// transaction's reset discards the unpushed commit.
package store
