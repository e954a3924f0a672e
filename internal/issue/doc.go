// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error presentation: a catalog of known
// failure modes rendered as Markdown help cards, and ActionableError for
// attaching operation context and fix suggestions to errors.
package issue
