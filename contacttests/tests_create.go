package contacttests

import (
	"github.com/stretchr/testify/assert"
)

func DoCreateContactTests(t *T) {
	t.Run("echoes cpf", func(t *T) {
		t.ResetContacts()

		contact := SampleContact(t.NextCPF())
		created := t.CreateContact(contact)
		assert.Equal(t, contact.CPF, created.CPF)
	})

	t.Run("appears in list", func(t *T) {
		t.ResetContacts()

		contact := SampleContact(t.NextCPF())
		t.CreateContact(contact)
		contacts := t.AwaitListContains(contact.CPF)
		t.Debug("list holds %d contact(s)", len(contacts))
		var found int
		for _, c := range contacts {
			if c.CPF == contact.CPF {
				found++
			}
		}
		assert.Equal(t, 1, found, "list should hold exactly one record with cpf %s", contact.CPF)
	})
}
