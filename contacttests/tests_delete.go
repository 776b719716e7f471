package contacttests

func DoDeleteAllContactsTests(t *T) {
	t.Run("list is empty afterwards", func(t *T) {
		t.DeleteAllContacts()
		t.AwaitContactCount(0)
	})

	t.Run("deleted contact is not found", func(t *T) {
		t.ResetContacts()

		contact := SampleContact(t.NextCPF())
		t.CreateContact(contact)
		t.AwaitContact(contact.CPF)

		t.DeleteAllContacts()
		t.AwaitContactCount(0)
		t.RequireContactNotFound(contact.CPF)
	})

	t.Run("deleting an empty list succeeds", func(t *T) {
		t.ResetContacts()
		t.DeleteAllContacts()
	})
}
