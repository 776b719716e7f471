package contacttests

import (
	"github.com/stretchr/testify/assert"
)

func DoGetContactByCPFTests(t *T) {
	t.Run("found after create", func(t *T) {
		t.ResetContacts()

		contact := SampleContact(t.NextCPF())
		t.CreateContact(contact)

		// The service may not make a new record readable right away.
		found := t.AwaitContact(contact.CPF)
		assert.Equal(t, contact.Name, found.Name, "name")
		assert.Equal(t, contact.Phone, found.Phone, "phone")
		assert.Equal(t, contact.Email, found.Email, "email")

		again := t.RequireContact(contact.CPF)
		assert.Equal(t, found, again, "repeated lookup returned a different record")
	})

	t.Run("unknown cpf returns 404", func(t *T) {
		for i := 0; i < 3; i++ {
			t.RequireContactNotFound(UnknownCPF)
		}
	})
}
