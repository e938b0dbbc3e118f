// Package blockapi exposes the block engine over net/http so editing clients
// can refetch block markup and validation without a full page reload.
//
// Two POST routes are mounted under a base path:
//
//	/fetch   JSON in, JSON out: form markup, preview markup and validation
//	/render  JSON in, HTML out: the block rendered for display or editing
//
// Every HTTP request runs in its own engine scope, so nothing cached or staged
// outlives the request.
package blockapi
