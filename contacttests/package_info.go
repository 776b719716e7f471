// Package contacttests contains the contact service contract tests and their supporting API.
//
// Test harness infrastructure that is not specific to the contact domain, such as sending
// requests, polling and the test context, is in the lower-level framework package.
package contacttests
