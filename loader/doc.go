// Package loader extracts page-structured text from uploaded files.
// Each format is a pluggable Loader; the Registry picks one by file
// extension so new formats can be added without touching the workers.
package loader
