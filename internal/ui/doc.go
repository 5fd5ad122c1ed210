// Package ui renders command lifecycle events for people reading a terminal.
//
// Structured telemetry keeps flowing through the diagnostic logger; the
// console event logger only adds short sentences such as "Listing open issues
// for owner/repo" when the console log format is selected.
package ui
