// Package consts houses some constants needed across resproc
package consts

// Version contains the current semantic version of resproc.
const Version = "0.4.0"
