// Package bean provides the schema-flexible record type shared by the store,
// the cursor and the tag engine.
//
// This package contains type definitions only. All other internal packages
// import bean; bean imports nothing internal.
//
// Key design constraints:
//   - Field values are a closed variant (Null, Int, Float, String, Bool, Bytes),
//     never arbitrary Go values
//   - Relation slots (Shared) are a separate collection of bean references,
//     keyed by related type, not magic-named fields
//   - Identity is (Type, ID); ID is empty until the bean is stored
package bean
