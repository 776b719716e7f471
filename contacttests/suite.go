package contacttests

import (
	"context"

	"github.com/contactsapi/contract-tests/framework"
)

const defaultMaxContacts = 30

// RunTestSuite runs every contact contract test against the service behind harness.
func RunTestSuite(
	ctx context.Context,
	harness *framework.TestHarness,
	options SuiteOptions,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	if options.MaxContacts <= 0 {
		options.MaxContacts = defaultMaxContacts
	}
	env := &environment{
		harness: harness,
		cpfs:    NewCPFGenerator(nil),
		options: options,
	}
	return framework.Run(ctx, filter, testLogger, func(c *framework.Context) {
		t := &T{context: c, env: env}

		t.Group("list contacts", DoListContactsTests)
		t.Group("create contact", DoCreateContactTests)
		t.Group("get contact by cpf", DoGetContactByCPFTests)
		t.Group("delete all contacts", DoDeleteAllContactsTests)
		t.Group("contact cap", DoContactCapTests)
	})
}
