// Package request builds, caches and renders the statements of an
// object/relational persistence layer.
//
// A Task names a type, an operation and the fields involved. The
// PersistRequestBuilder turns it into one prepared PersistRequest per
// table (or one batch), with version filters when the task validates
// optimistic concurrency. TaskCache and QueryCache share prepared requests
// between callers. A prepared request renders a Command per execution:
// the final SQL text plus arguments converted through each binding's type
// mapping.
package request
