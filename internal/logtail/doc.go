// Package logtail reads the tail of khidmat's log file for the activity view.
//
// # Reading
//
// Read returns the last maxLines lines of a file in one sequential pass,
// keeping only a ring buffer of maxLines entries in memory. A missing file
// yields no lines and no error; the log is created lazily by the first write.
//
// # Parsing
//
// Parse splits a console-formatted zerolog line
//
//	2026-10-19 09:14:03 WRN request failed error="dial tcp: refused" method=GET
//
// into an Entry with its timestamp, level, message and key=value fields.
// Lines that do not start with a timestamp (stack traces, multi-line values)
// are returned as continuation entries so nothing is dropped.
//
// # Filtering
//
// Filter keeps entries at or above a minimum level and, optionally, those
// whose text contains a case-insensitive needle. Continuation lines follow
// the entry they belong to.
package logtail
