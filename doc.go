// Geoblocks reconciles MaxMind GeoLite City blocks files.
//
// Some blocks in the file point to a placeholder location (242, the
// "anonymous proxy" country A1 by default) instead of a real one. Such
// entries are useless for geolocation, so this tool tries to get rid of
// them.
//
// Automatic changes
//
// A single placeholder block which sits exactly between 2 blocks is
// replaced with the location of its neighbours if both neighbours have
// the same location. If neighbours have different locations of the
// same country, the country-level location is used instead. Runs of
// several placeholder blocks, and blocks at the very start or end of the
// file are left as is.
//
// Manual changes
//
// A file of manual corrections uses the same format as blocks file.
// Correction replaces the location of the block with the same start and
// end, and an empty location removes the block. Everything which cannot
// be applied is reported.
//
// Both results are written into separate files. Lookup command resolves
// IP addresses against any blocks file.
package main
