// Package tagging attaches free-form tags to beans and selects beans by tag.
//
// A tag is itself a bean of type "tag" with a title field. Tags are shared
// by every bean type: tagging a movie "classic" and a book "classic" links
// both to the same tag bean. Tags are created on first use and never
// deleted by this package.
//
// The Manager works only through three collaborators:
//
//   - BeanStore finds, creates and stores beans
//   - AssociationManager links and unlinks pairs of beans
//   - QueryWriter selects beans of a type by tag titles
//
// The store package implements all three over SQLite.
//
// # Tag lists
//
// Operations take a List, built with Titles or Parse. None, the zero
// value, means "no tags": Tag(ctx, b, None) reads b's tags while
// Tag(ctx, b, Titles()) removes them.
//
// # Concurrency
//
// Find-then-create in AddTags is not atomic. Two callers adding the same new
// title at once may both try to create it; with a unique title constraint
// one of them fails. Wrap such calls in RetryConflict to absorb the race.
package tagging
