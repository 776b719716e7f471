// Package framework contains the low-level implementation of test harness infrastructure
// that does not know anything about the contact service.
//
// The general model is:
//
// 1. The test harness sends HTTP requests to a remote service identified by a base URL, and
// receives fully-read responses that tests can make assertions about.
//
// 2. Conditions that the service only satisfies eventually are checked with Poll, which
// retries with exponential backoff until a deadline, instead of sleeping for a fixed time.
//
// 3. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier, to register cleanup
// functions, and to accumulate success/failure results.
//
// The domain-specific code that knows what is being tested is responsible for building the
// requests, deciding which responses are acceptable, and providing a domain-specific test
// API on top of the test context.
package framework
