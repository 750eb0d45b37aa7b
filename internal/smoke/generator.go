package smoke

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/okian/convention/internal/domain/model"
)

// pngHeader is enough of a PNG for the receipt upload.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

var (
	firstNames = []string{"Ada", "Chidi", "Ngozi", "Emeka", "Amaka", "Obinna", "Ifeoma", "Uche"}
	lastNames  = []string{"Obi", "Eze", "Okafor", "Nwosu", "Okeke", "Ibe", "Onyema", "Agu"}
	schools    = []string{"UNN", "UNIZIK", "FUTO", "EBSU", "IMSU", "ESUT"}
)

type delegate struct {
	fullName    string
	email       string
	institution string
	gender      model.Gender
	zone        model.Zone
	skill       model.Skill
	size        model.TShirtSize
	receipt     []byte
}

func (d delegate) fields() map[string]string {
	return map[string]string{
		"fullName":    d.fullName,
		"gender":      string(d.gender),
		"email":       d.email,
		"phone":       "0803" + fmt.Sprintf("%07d", pick(10_000_000)),
		"department":  "Smoke Testing",
		"institution": d.institution,
		"zone":        string(d.zone),
		"skill":       string(d.skill),
		"tshirtSize":  string(d.size),
	}
}

func pick(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// generateDelegates returns n delegates with distinct names, so none of them
// collide on the duplicate key.
func generateDelegates(n int) []delegate {
	out := make([]delegate, n)
	for i := range out {
		tag := uuid.NewString()[:8]
		out[i] = delegate{
			fullName:    fmt.Sprintf("%s %s %s", firstNames[pick(len(firstNames))], lastNames[pick(len(lastNames))], tag),
			email:       "smoke+" + tag + "@example.com",
			institution: schools[pick(len(schools))],
			gender:      model.Genders[pick(len(model.Genders))],
			zone:        model.Zones[pick(len(model.Zones))],
			skill:       model.Skills[pick(len(model.Skills))],
			size:        model.TShirtSizes[pick(len(model.TShirtSizes))],
			receipt:     append(append([]byte{}, pngHeader...), tag...),
		}
	}
	return out
}
