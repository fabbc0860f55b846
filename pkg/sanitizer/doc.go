// Package sanitizer normalizes user-supplied text before validation and storage.
//
// Every function is idempotent and never fails: invalid input collapses to an
// empty string or an empty slice.
//
// Normalization includes:
//   - Free text (titles, descriptions, locations): trim and collapse whitespace
//   - Identifiers: trim and lowercase, so hex ObjectIDs compare by value
//   - Search terms: free text capped to a fixed number of runes
//   - Slices: normalize each entry, drop empties and duplicates
package sanitizer
