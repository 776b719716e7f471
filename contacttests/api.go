package contacttests

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/contactsapi/contract-tests/framework"
	"github.com/contactsapi/contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/require"
)

// Statuses accepted for each operation.
var (
	listOKStatuses    = []int{http.StatusOK}
	createdStatuses   = []int{http.StatusCreated}
	createdOrRejected = []int{http.StatusCreated, http.StatusBadRequest}
	deletedStatuses   = []int{http.StatusOK, http.StatusNoContent}
	foundStatuses     = []int{http.StatusOK}
	notFoundStatuses  = []int{http.StatusNotFound}
)

var (
	errNotVisibleYet    = errors.New("not visible yet")
	errUnexpectedStatus = errors.New("unexpected response status")
)

// SuiteOptions controls how the contact suite talks to the service.
type SuiteOptions struct {
	// MaxContacts is the cap the service is expected to enforce.
	MaxContacts int

	// Poll is the retry schedule for read-after-write checks.
	Poll framework.PollOptions

	// KeepData disables the teardown that deletes all contacts after tests that reset them.
	KeepData bool
}

type environment struct {
	harness *framework.TestHarness
	cpfs    *CPFGenerator
	options SuiteOptions
}

// T represents a test or subtest in the contact suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is outside
// of the Go test runner. Those features are provided by our lower-level framework package.
//
// It also provides the operations of the contact service's API. Each one sends a single request,
// checks the status code and body shape, and makes the test fail and exit immediately if either is
// not what the contract says. To make further assertions, use the assert and require packages,
// passing the *T as if it were a *testing.T.
type T struct {
	context *framework.Context
	env     *environment
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(&T{context: c, env: t.env})
	})
}

// Group runs a subtest made up only of further subtests. See framework.Context.Group.
func (t *T) Group(name string, action func(*T)) {
	t.context.Group(name, func(c *framework.Context) {
		action(&T{context: c, env: t.env})
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Defer schedules a function to run at the end of the current test.
func (t *T) Defer(fn func()) {
	t.context.Defer(fn)
}

// MaxContacts returns the cap the service is expected to enforce.
func (t *T) MaxContacts() int {
	return t.env.options.MaxContacts
}

// NextCPF returns an identifier that has not been used before in this run.
func (t *T) NextCPF() string {
	return t.env.cpfs.Next()
}

// NextCPFBlock returns n consecutive identifiers that have not been used before in this run.
func (t *T) NextCPFBlock(n int) []string {
	return t.env.cpfs.NextBlock(n)
}

// RunTag returns a short tag derived from the run ID, for namespacing generated data.
func (t *T) RunTag() string {
	id := t.env.harness.RunID()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Send makes a request to the service and returns the response, whatever its status. The test
// fails and exits if no response was received.
func (t *T) Send(method, path string, body interface{}) *framework.Response {
	resp, err := t.env.harness.Do(t.context.Ctx(), method, path, body, t.context.DebugLogger())
	require.NoError(t, err)
	return resp
}

func (t *T) requireStatus(resp *framework.Response, expected ...int) {
	if !resp.StatusIn(expected...) {
		require.Fail(t, errUnexpectedStatus.Error(), "expected %s but %s", statusList(expected), resp)
	}
}

// ListContacts sends GET /contacts and requires a 200 status and a JSON array body.
func (t *T) ListContacts() []servicedef.Contact {
	resp := t.Send(http.MethodGet, servicedef.ContactsPath, nil)
	t.requireStatus(resp, listOKStatuses...)
	contacts, err := parseContactList(resp)
	require.NoError(t, err)
	return contacts
}

// TryCreateContact sends POST /contacts and returns the response without checking it.
func (t *T) TryCreateContact(c servicedef.Contact) *framework.Response {
	return t.Send(http.MethodPost, servicedef.ContactsPath, c)
}

// CreateContact sends POST /contacts and requires a 201 status with the same cpf echoed back.
func (t *T) CreateContact(c servicedef.Contact) servicedef.Contact {
	resp := t.TryCreateContact(c)
	t.requireStatus(resp, createdStatuses...)
	created, err := parseCreatedContact(resp, c.CPF)
	require.NoError(t, err)
	return created
}

// LookupContact sends GET /contacts/{cpf} and returns the response without checking it.
func (t *T) LookupContact(cpf string) *framework.Response {
	return t.Send(http.MethodGet, servicedef.ContactPath(cpf), nil)
}

// RequireContact sends GET /contacts/{cpf} and requires a 200 status with a record for that cpf.
func (t *T) RequireContact(cpf string) servicedef.Contact {
	resp := t.LookupContact(cpf)
	t.requireStatus(resp, foundStatuses...)
	found, err := parseFoundContact(resp, cpf)
	require.NoError(t, err)
	return found
}

// RequireContactNotFound sends GET /contacts/{cpf} and requires a 404 status.
func (t *T) RequireContactNotFound(cpf string) {
	resp := t.LookupContact(cpf)
	t.requireStatus(resp, notFoundStatuses...)
}

// DeleteAllContacts sends DELETE /contacts and requires a 200 or 204 status.
func (t *T) DeleteAllContacts() {
	resp := t.Send(http.MethodDelete, servicedef.ContactsPath, nil)
	t.requireStatus(resp, deletedStatuses...)
}

// BulkCreate sends n create requests, one at a time, with consecutive identifiers starting at
// baseCPF. Every request must get a 201 or 400 status; the statuses are returned in order.
func (t *T) BulkCreate(n int, baseCPF string) []int {
	cpfs, err := CPFSequence(baseCPF, n)
	require.NoError(t, err)
	statuses := make([]int, 0, n)
	for i, cpf := range cpfs {
		resp := t.TryCreateContact(NumberedContact(i+1, cpf, t.RunTag()))
		t.requireStatus(resp, createdOrRejected...)
		if resp.StatusCode == http.StatusCreated {
			_, err := parseCreatedContact(resp, cpf)
			require.NoError(t, err)
		}
		statuses = append(statuses, resp.StatusCode)
	}
	t.Debug("bulk create of %d contacts: %d created, %d rejected", n,
		countStatus(statuses, http.StatusCreated), countStatus(statuses, http.StatusBadRequest))
	return statuses
}

// AwaitContact polls GET /contacts/{cpf} until it returns 200. A 404 means the record is not
// visible yet; any other status fails the test immediately.
func (t *T) AwaitContact(cpf string) servicedef.Contact {
	var found servicedef.Contact
	err := t.poll(fmt.Sprintf("contact %s to become visible", cpf), func() error {
		resp, err := t.env.harness.Do(t.context.Ctx(), http.MethodGet, servicedef.ContactPath(cpf), nil, t.context.DebugLogger())
		if err != nil {
			return err
		}
		switch {
		case resp.StatusIn(notFoundStatuses...):
			return errNotVisibleYet
		case !resp.StatusIn(foundStatuses...):
			return framework.Permanent(fmt.Errorf("%w: %s", errUnexpectedStatus, resp))
		}
		c, err := parseFoundContact(resp, cpf)
		if err != nil {
			return framework.Permanent(err)
		}
		found = c
		return nil
	})
	require.NoError(t, err)
	return found
}

// AwaitListContains polls GET /contacts until the list includes a record with the given cpf.
func (t *T) AwaitListContains(cpf string) []servicedef.Contact {
	return t.awaitList(fmt.Sprintf("contact %s to appear in list", cpf), func(contacts []servicedef.Contact) error {
		for _, c := range contacts {
			if c.CPF == cpf {
				return nil
			}
		}
		return errNotVisibleYet
	})
}

// AwaitContactCount polls GET /contacts until the list has exactly n records.
func (t *T) AwaitContactCount(n int) []servicedef.Contact {
	return t.awaitList(fmt.Sprintf("list to have %d contacts", n), func(contacts []servicedef.Contact) error {
		if len(contacts) != n {
			return fmt.Errorf("%w: list has %d contacts", errNotVisibleYet, len(contacts))
		}
		return nil
	})
}

func (t *T) awaitList(description string, check func([]servicedef.Contact) error) []servicedef.Contact {
	var last []servicedef.Contact
	err := t.poll(description, func() error {
		resp, err := t.env.harness.Do(t.context.Ctx(), http.MethodGet, servicedef.ContactsPath, nil, t.context.DebugLogger())
		if err != nil {
			return err
		}
		if !resp.StatusIn(listOKStatuses...) {
			return framework.Permanent(fmt.Errorf("%w: %s", errUnexpectedStatus, resp))
		}
		contacts, err := parseContactList(resp)
		if err != nil {
			return framework.Permanent(err)
		}
		last = contacts
		return check(contacts)
	})
	require.NoError(t, err)
	return last
}

func (t *T) poll(description string, check func() error) error {
	attempts := 0
	err := framework.Poll(t.context.Ctx(), t.env.options.Poll, func() error {
		attempts++
		return check()
	})
	if err != nil {
		return fmt.Errorf("waiting for %s (%d attempts): %w", description, attempts, err)
	}
	t.Debug("%s after %d attempt(s)", description, attempts)
	return nil
}

// ResetContacts brings the service to a known empty state: it deletes all contacts and waits
// until the list is empty. Unless the suite was told to keep data, it also arranges for all
// contacts to be deleted again when the current test ends.
func (t *T) ResetContacts() {
	t.DeleteAllContacts()
	t.AwaitContactCount(0)
	if !t.env.options.KeepData {
		t.Defer(func() {
			resp, err := t.env.harness.Do(t.context.Ctx(), http.MethodDelete, servicedef.ContactsPath, nil, t.context.DebugLogger())
			if err != nil {
				t.Debug("teardown: %s", err)
				return
			}
			if !resp.StatusIn(deletedStatuses...) {
				t.Debug("teardown: %s", resp)
			}
		})
	}
}

func parseContactList(resp *framework.Response) ([]servicedef.Contact, error) {
	value := resp.JSON()
	if !resp.IsJSON() || value.Type() != ldvalue.ArrayType {
		return nil, fmt.Errorf("expected a JSON array from %s %s, got: %s", resp.Method, resp.Path, resp.Body)
	}
	contacts := make([]servicedef.Contact, 0, value.Count())
	for i, item := range resp.Get("@this").Array() {
		if !item.IsObject() {
			return nil, fmt.Errorf("element %d of contact list is not an object: %s", i, item.Raw)
		}
		contacts = append(contacts, contactFromJSON(item))
	}
	return contacts, nil
}

func parseCreatedContact(resp *framework.Response, cpf string) (servicedef.Contact, error) {
	return parseContactRecord(resp, cpf, "created contact")
}

func parseFoundContact(resp *framework.Response, cpf string) (servicedef.Contact, error) {
	return parseContactRecord(resp, cpf, "contact lookup")
}

func parseContactRecord(resp *framework.Response, cpf, what string) (servicedef.Contact, error) {
	if !resp.IsJSON() || resp.JSON().Type() != ldvalue.ObjectType {
		return servicedef.Contact{}, fmt.Errorf("%s: expected a JSON object, got: %s", what, resp.Body)
	}
	echoed := resp.Get("cpf")
	if !echoed.Exists() {
		return servicedef.Contact{}, fmt.Errorf("%s: response has no cpf field: %s", what, resp.Body)
	}
	if echoed.String() != cpf {
		return servicedef.Contact{}, fmt.Errorf("%s: expected cpf %q but response has %q", what, cpf, echoed.String())
	}
	return contactFromJSON(resp.Get("@this")), nil
}

func statusList(statuses []int) string {
	ss := make([]string, 0, len(statuses))
	for _, s := range statuses {
		ss = append(ss, strconv.Itoa(s))
	}
	return "status " + strings.Join(ss, " or ")
}

func countStatus(statuses []int, status int) int {
	n := 0
	for _, s := range statuses {
		if s == status {
			n++
		}
	}
	return n
}
