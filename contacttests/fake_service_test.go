package contacttests

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/contactsapi/contract-tests/servicedef"
)

// fakeContactService is an in-memory stand-in for the contact service. The zero value of
// each behavior field gives a service that honors the contract; tests set fields to break it
// in specific ways.
type fakeContactService struct {
	maxContacts int

	// hiddenReads is how many reads a new contact stays invisible for, to imitate a service
	// that does not make writes readable immediately.
	hiddenReads int

	createStatus  int
	omitCPFEcho   bool
	unknownStatus int
	deleteStatus  int
	listBody      string

	// foreignWrites makes every successful create also add a contact nobody asked for, like a
	// second client sharing the service would.
	foreignWrites bool

	contacts []servicedef.Contact
	pending  map[string]int
	methods  []string
	lock     sync.Mutex
}

func newFakeContactService(maxContacts int) *fakeContactService {
	return &fakeContactService{maxContacts: maxContacts, pending: make(map[string]int)}
}

func (s *fakeContactService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.methods = append(s.methods, r.Method+" "+r.URL.Path)

	switch {
	case r.URL.Path == servicedef.ContactsPath:
		switch r.Method {
		case http.MethodGet:
			s.list(w)
		case http.MethodPost:
			s.create(w, r)
		case http.MethodDelete:
			s.contacts = nil
			s.pending = make(map[string]int)
			w.WriteHeader(orDefault(s.deleteStatus, http.StatusNoContent))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case strings.HasPrefix(r.URL.Path, servicedef.ContactsPath+"/") && r.Method == http.MethodGet:
		s.lookup(w, strings.TrimPrefix(r.URL.Path, servicedef.ContactsPath+"/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *fakeContactService) list(w http.ResponseWriter) {
	if s.listBody != "" {
		writeRawJSON(w, http.StatusOK, s.listBody)
		return
	}
	visible := make([]servicedef.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		if s.pending[c.CPF] > 0 {
			s.pending[c.CPF]--
			continue
		}
		visible = append(visible, c)
	}
	writeJSON(w, http.StatusOK, visible)
}

func (s *fakeContactService) create(w http.ResponseWriter, r *http.Request) {
	var c servicedef.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.CPF == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid contact"})
		return
	}
	if len(s.contacts) >= s.maxContacts {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "contact limit reached"})
		return
	}
	for _, existing := range s.contacts {
		if existing.CPF == c.CPF {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "duplicate cpf"})
			return
		}
	}
	s.contacts = append(s.contacts, c)
	if s.foreignWrites {
		s.contacts = append(s.contacts, servicedef.Contact{Name: "Someone Else", CPF: "foreign-" + c.CPF})
	}
	if s.hiddenReads > 0 {
		s.pending[c.CPF] = s.hiddenReads
	}
	if s.omitCPFEcho {
		writeJSON(w, orDefault(s.createStatus, http.StatusCreated), map[string]string{"name": c.Name})
		return
	}
	writeJSON(w, orDefault(s.createStatus, http.StatusCreated), c)
}

func (s *fakeContactService) lookup(w http.ResponseWriter, cpf string) {
	for _, c := range s.contacts {
		if c.CPF != cpf {
			continue
		}
		if s.pending[cpf] > 0 {
			s.pending[cpf]--
			break
		}
		writeJSON(w, http.StatusOK, c)
		return
	}
	writeJSON(w, orDefault(s.unknownStatus, http.StatusNotFound), map[string]string{"error": "not found"})
}

func (s *fakeContactService) count() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.contacts)
}

func (s *fakeContactService) requests() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.methods...)
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	data, _ := json.Marshal(value)
	writeRawJSON(w, status, string(data))
}

func writeRawJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func orDefault(value, defaultValue int) int {
	if value == 0 {
		return defaultValue
	}
	return value
}
