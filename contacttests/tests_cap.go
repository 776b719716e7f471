package contacttests

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The service is expected to refuse contacts beyond its cap, but where exactly it starts
// refusing is not pinned down, so creations up to and past the cap may get either 201 or 400.
func DoContactCapTests(t *T) {
	t.Run("bulk create up to cap", func(t *T) {
		t.ResetContacts()

		cpfs := t.NextCPFBlock(t.MaxContacts())
		statuses := t.BulkCreate(t.MaxContacts(), cpfs[0])
		assert.Len(t, statuses, t.MaxContacts())

		created := countStatus(statuses, http.StatusCreated)
		contacts := t.AwaitContactCount(created)
		assert.LessOrEqual(t, len(contacts), t.MaxContacts())
	})

	t.Run("creation beyond cap is not a server error", func(t *T) {
		t.ResetContacts()

		cpfs := t.NextCPFBlock(t.MaxContacts() + 1)
		t.BulkCreate(t.MaxContacts(), cpfs[0])

		resp := t.TryCreateContact(NumberedContact(t.MaxContacts()+1, cpfs[t.MaxContacts()], t.RunTag()))
		require.Less(t, resp.StatusCode, 500, "service failed instead of accepting or rejecting: %s", resp)
		assert.Contains(t, createdOrRejected, resp.StatusCode, "unexpected status: %s", resp)
		if resp.StatusCode == http.StatusCreated {
			t.Debug("service accepted contact number %d", t.MaxContacts()+1)
		}
	})
}
