// Package database stores the run history of docprep in SQLite.
//
// Every preprocess or extract run is recorded with its input directory,
// timings, the complete JSON result and one row per page holding the page
// diagnostics and the fingerprint of the source image. The history lets a
// user find out which pages fell back, or whether a page changed since an
// earlier run.
//
// The database is a single file, docprep.db, in the XDG data directory.
// modernc.org/sqlite is used so the binary stays free of a C toolchain
// for storage.
package database
