// Package mturk reads the worker dashboard.
//
// the dashboard is mostly a server rendered page with react components mounted
// on top of it, the components carry their initial state in `data-react-props`
// attributes as json. everything here is read-only and stateless: the output
// depends solely on the page snapshot that was passed in.
//
// each extraction has this structure:
//  1. query the snapshot with a css selector.
//  2. pull text or an attribute off the matched elements.
//  3. validate it against the shape the field is expected to have.
//  4. fall back to the next strategy, or to the field's default.
//
// nothing in this package returns an error for a page that does not look the
// way it expects, a missing element is reported as a warning and the field
// keeps its default.
package mturk
