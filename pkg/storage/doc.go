// Package storage saves rendered reports to disk.
//
// Reports are written to a temporary file and renamed into place, so a
// crash never leaves a half-written report behind. Files are named
// <username>_<timestamp>.<ext> where the extension follows the format
// (.txt, .json or .yaml).
//
// Usage:
//
//	manager, err := storage.NewManager("./reports")
//	if err != nil {
//	    return err
//	}
//
//	path, err := manager.SaveReport(r, report.FormatJSON)
package storage
