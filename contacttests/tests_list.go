package contacttests

func DoListContactsTests(t *T) {
	t.Run("returns array", func(t *T) {
		contacts := t.ListContacts()
		t.Debug("service currently holds %d contacts", len(contacts))
	})
}
