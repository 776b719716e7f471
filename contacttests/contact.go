package contacttests

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/contactsapi/contract-tests/servicedef"

	"github.com/tidwall/gjson"
)

const cpfLength = 11

var cpfModulus = pow10(cpfLength)

// UnknownCPF is an identifier that no test ever creates.
const UnknownCPF = "00000000000"

// SampleContact returns the contact used by the single-contact scenarios.
func SampleContact(cpf string) servicedef.Contact {
	return servicedef.Contact{
		Name:  "Ana Silva",
		Phone: "(51) 94321-8765",
		Email: "ana.silva@example.com",
		CPF:   cpf,
	}
}

// NumberedContact returns the i'th contact of a bulk creation. The tag is included in the
// email address so that records from different runs can be told apart.
func NumberedContact(i int, cpf, tag string) servicedef.Contact {
	email := fmt.Sprintf("contact%d@example.com", i)
	if tag != "" {
		email = fmt.Sprintf("contact%d.%s@example.com", i, tag)
	}
	return servicedef.Contact{
		Name:  fmt.Sprintf("Contact %d", i),
		Phone: fmt.Sprintf("(11) 91234-%04d", 5600+i%10000),
		Email: email,
		CPF:   cpf,
	}
}

func contactFromJSON(r gjson.Result) servicedef.Contact {
	return servicedef.Contact{
		Name:  r.Get("name").String(),
		Phone: r.Get("phone").String(),
		Email: r.Get("email").String(),
		CPF:   r.Get("cpf").String(),
	}
}

// CPFGenerator produces 11-digit identifiers derived from the current time. Values are
// strictly increasing within one generator, so they never repeat during a run even when
// several are requested within the same millisecond.
type CPFGenerator struct {
	now  func() time.Time
	last uint64
	lock sync.Mutex
}

// NewCPFGenerator creates a generator. If now is nil, time.Now is used.
func NewCPFGenerator(now func() time.Time) *CPFGenerator {
	if now == nil {
		now = time.Now
	}
	return &CPFGenerator{now: now}
}

// Next returns a new identifier.
func (g *CPFGenerator) Next() string {
	return g.NextBlock(1)[0]
}

// NextBlock returns n consecutive identifiers that are not shared with any other value
// returned by this generator.
func (g *CPFGenerator) NextBlock(n int) []string {
	if n < 1 {
		return nil
	}
	g.lock.Lock()
	defer g.lock.Unlock()

	start := uint64(g.now().UnixMilli()) % cpfModulus
	if g.last != 0 && start <= g.last {
		start = g.last + 1
	}
	if start == 0 || start+uint64(n) > cpfModulus {
		start = 1
	}
	g.last = start + uint64(n) - 1

	ret := make([]string, n)
	for i := range ret {
		ret[i] = formatCPF(start + uint64(i))
	}
	return ret
}

// CPFSequence returns n identifiers counting up from base, keeping the width of base.
func CPFSequence(base string, n int) ([]string, error) {
	if base == "" {
		return nil, fmt.Errorf("base cpf is empty")
	}
	if len(base) > 19 {
		return nil, fmt.Errorf("base cpf %q is too long", base)
	}
	start, err := strconv.ParseUint(base, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("base cpf %q is not numeric", base)
	}
	limit := pow10(len(base))
	if start+uint64(n) > limit {
		return nil, fmt.Errorf("base cpf %q leaves no room for %d identifiers", base, n)
	}
	ret := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ret = append(ret, fmt.Sprintf("%0*d", len(base), start+uint64(i)))
	}
	return ret, nil
}

func formatCPF(n uint64) string {
	return fmt.Sprintf("%0*d", cpfLength, n)
}

func pow10(n int) uint64 {
	ret := uint64(1)
	for i := 0; i < n; i++ {
		ret *= 10
	}
	return ret
}
