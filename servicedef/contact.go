// Package servicedef defines the wire format of the contact service.
package servicedef

import (
	"fmt"
	"net/url"
)

// ContactsPath is the collection resource, relative to the service base URL.
const ContactsPath = "/contacts"

// Contact is the JSON representation of a contact, both in create requests and in responses.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
}

func (c Contact) String() string {
	return fmt.Sprintf("%s <%s> cpf=%s", c.Name, c.Email, c.CPF)
}

// ContactPath returns the path of a single contact resource.
func ContactPath(cpf string) string {
	return ContactsPath + "/" + url.PathEscape(cpf)
}
