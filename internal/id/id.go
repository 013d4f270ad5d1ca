package id

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Namespace roots every Stable identifier.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/UfukSeker41/api-controller"))

// Slug lowercases s, folds accented letters to their base form and replaces
// every run of characters outside [a-z0-9] with a single dash. Leading and
// trailing dashes are trimmed, so the result may be empty.
func Slug(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// EndpointID derives an endpoint identifier from its path and method, e.g.
// "/users/{id}" + GET gives "users-id-get".
func EndpointID(path, method string) string {
	return Slug(path + "-" + method)
}

// Stable returns a name-based UUID for the given parts. The same parts always
// give the same UUID.
func Stable(parts ...string) string {
	return uuid.NewSHA1(Namespace, []byte(strings.Join(parts, "\x00"))).String()
}

// Set hands out identifiers that are unique within one scope. The zero value
// is ready to use. A Set is not safe for concurrent use.
type Set struct {
	used map[string]struct{}
}

// Claim reserves want, or the first free "want-N" for N >= 2 when want is
// already taken. It reports whether a suffix had to be added.
func (s *Set) Claim(want string) (string, bool) {
	if s.used == nil {
		s.used = make(map[string]struct{})
	}
	if _, taken := s.used[want]; !taken {
		s.used[want] = struct{}{}
		return want, false
	}
	for n := 2; ; n++ {
		candidate := want + "-" + strconv.Itoa(n)
		if _, taken := s.used[candidate]; !taken {
			s.used[candidate] = struct{}{}
			return candidate, true
		}
	}
}

// Has reports whether id has been claimed.
func (s *Set) Has(id string) bool {
	_, ok := s.used[id]
	return ok
}
