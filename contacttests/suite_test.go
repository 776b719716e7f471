package contacttests

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/contactsapi/contract-tests/framework"
	"github.com/contactsapi/contract-tests/servicedef"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxContacts = 5

func fastOptions() SuiteOptions {
	return SuiteOptions{
		MaxContacts: testMaxContacts,
		Poll: framework.PollOptions{
			Timeout:         2 * time.Second,
			InitialInterval: time.Millisecond,
			MaxInterval:     10 * time.Millisecond,
		},
	}
}

func newTestHarness(t *testing.T, url string) *framework.TestHarness {
	h, err := framework.NewTestHarness(
		context.Background(),
		framework.HarnessParams{
			BaseURL:        url,
			RunID:          "0123456789abcdef",
			StatusPath:     servicedef.ContactsPath,
			StartupTimeout: time.Second,
		},
		nil,
		nil,
	)
	require.NoError(t, err)
	return h
}

func runSuiteAgainst(t *testing.T, fake *fakeContactService, options SuiteOptions, filter framework.Filter) framework.Results {
	var results framework.Results
	httphelpers.WithServer(fake, func(server *httptest.Server) {
		h := newTestHarness(t, server.URL)
		results = RunTestSuite(context.Background(), h, options, filter, nil)
	})
	return results
}

func requireAllPassed(t *testing.T, results framework.Results) {
	t.Helper()
	for _, f := range results.Failures {
		for _, err := range f.Errors {
			t.Errorf("%s: %s", f.TestID, err)
		}
	}
	require.True(t, results.OK())
}

func failureIDs(results framework.Results) []string {
	var ret []string
	for _, f := range results.Failures {
		ret = append(ret, f.TestID.String())
	}
	return ret
}

func TestSuitePassesAgainstConformingService(t *testing.T) {
	fake := newFakeContactService(testMaxContacts)
	results := runSuiteAgainst(t, fake, fastOptions(), nil)

	requireAllPassed(t, results)
	ran, skipped := results.Counts()
	assert.Equal(t, 15, ran)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 0, fake.count(), "teardown should have deleted all contacts")
}

func TestSuitePassesWhenWritesBecomeVisibleLate(t *testing.T) {
	fake := newFakeContactService(testMaxContacts)
	fake.hiddenReads = 3
	results := runSuiteAgainst(t, fake, fastOptions(), nil)

	requireAllPassed(t, results)
}

func TestSuiteAcceptsDefaultCap(t *testing.T) {
	fake := newFakeContactService(defaultMaxContacts)
	options := fastOptions()
	options.MaxContacts = 0
	results := runSuiteAgainst(t, fake, options, nil)

	requireAllPassed(t, results)
}

func TestSuiteToleratesServiceWithoutCap(t *testing.T) {
	fake := newFakeContactService(1000)
	results := runSuiteAgainst(t, fake, fastOptions(), nil)

	requireAllPassed(t, results)
}

func TestKeepDataSkipsTeardown(t *testing.T) {
	fake := newFakeContactService(testMaxContacts)
	options := fastOptions()
	options.KeepData = true
	results := runSuiteAgainst(t, fake, options, nil)

	requireAllPassed(t, results)
	assert.Equal(t, testMaxContacts, fake.count())
}

func TestFilterRunsOnlySelectedTests(t *testing.T) {
	fake := newFakeContactService(testMaxContacts)
	var filters framework.RegexFilters
	id := framework.TestID{Path: []string{"get contact by cpf", "unknown cpf returns 404"}}
	require.NoError(t, filters.MustMatch.Set(id.Pattern()))

	results := runSuiteAgainst(t, fake, fastOptions(), filters.AsFilter)
	requireAllPassed(t, results)

	requests := fake.requests()
	require.NotEmpty(t, requests)
	assert.Equal(t, "GET /contacts", requests[0], "startup probe")
	assert.Equal(t, []string{
		"GET /contacts/" + UnknownCPF,
		"GET /contacts/" + UnknownCPF,
		"GET /contacts/" + UnknownCPF,
	}, requests[1:])
}

func TestFilterSelectingGroupRunsAllOfItsTests(t *testing.T) {
	fake := newFakeContactService(testMaxContacts)
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set("^contact cap$"))

	results := runSuiteAgainst(t, fake, fastOptions(), filters.AsFilter)
	requireAllPassed(t, results)

	ran, _ := results.Counts()
	assert.Equal(t, 3, ran)
	assert.Contains(t, fake.requests(), "POST /contacts")
}

func TestFilterByTestNameReachesNestedTest(t *testing.T) {
	fake := newFakeContactService(testMaxContacts)
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set("echoes cpf"))

	results := runSuiteAgainst(t, fake, fastOptions(), filters.AsFilter)
	requireAllPassed(t, results)

	var ran []string
	for _, r := range results.Tests {
		if !r.Skipped {
			ran = append(ran, r.TestID.String())
		}
	}
	assert.Equal(t, []string{"create contact/echoes cpf", "create contact"}, ran)
}

func TestCreateTestsTolerateOtherWritersOnSharedService(t *testing.T) {
	fake := newFakeContactService(testMaxContacts)
	fake.foreignWrites = true
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set("^create contact$"))

	results := runSuiteAgainst(t, fake, fastOptions(), filters.AsFilter)
	requireAllPassed(t, results)
	ran, _ := results.Counts()
	assert.Equal(t, 3, ran)
}

func TestSuiteDetectsContractViolations(t *testing.T) {
	for _, tc := range []struct {
		name          string
		breakService  func(*fakeContactService)
		expectFailing string
		expectMessage string
	}{
		{
			name:          "create returns 200",
			breakService:  func(s *fakeContactService) { s.createStatus = 200 },
			expectFailing: "create contact/echoes cpf",
			expectMessage: "expected status 201",
		},
		{
			name:          "create does not echo cpf",
			breakService:  func(s *fakeContactService) { s.omitCPFEcho = true },
			expectFailing: "create contact/echoes cpf",
			expectMessage: "no cpf field",
		},
		{
			name:          "unknown cpf is found",
			breakService:  func(s *fakeContactService) { s.unknownStatus = 200 },
			expectFailing: "get contact by cpf/unknown cpf returns 404",
			expectMessage: "expected status 404",
		},
		{
			name:          "delete fails",
			breakService:  func(s *fakeContactService) { s.deleteStatus = 500 },
			expectFailing: "delete all contacts/list is empty afterwards",
			expectMessage: "expected status 200 or 204",
		},
		{
			name:          "list is not an array",
			breakService:  func(s *fakeContactService) { s.listBody = `{"contacts":[]}` },
			expectFailing: "list contacts/returns array",
			expectMessage: "expected a JSON array",
		},
		{
			name:          "create fails with server error",
			breakService:  func(s *fakeContactService) { s.createStatus = 500 },
			expectFailing: "contact cap/bulk create up to cap",
			expectMessage: "expected status 201 or 400",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fake := newFakeContactService(testMaxContacts)
			tc.breakService(fake)
			results := runSuiteAgainst(t, fake, fastOptions(), nil)

			require.False(t, results.OK())
			require.Contains(t, failureIDs(results), tc.expectFailing)
			for _, f := range results.Failures {
				if f.TestID.String() == tc.expectFailing {
					require.NotEmpty(t, f.Errors)
					assert.Contains(t, f.Errors[0].Error(), tc.expectMessage)
				}
			}
		})
	}
}

func TestSuiteFailsWhenServiceGoesAway(t *testing.T) {
	server := httptest.NewServer(newFakeContactService(testMaxContacts))
	h := newTestHarness(t, server.URL)
	server.Close()

	results := RunTestSuite(context.Background(), h, fastOptions(), nil, nil)
	assert.False(t, results.OK())
	assert.Contains(t, failureIDs(results), "list contacts/returns array")
	assert.Contains(t, failureIDs(results), "get contact by cpf/unknown cpf returns 404")
}
