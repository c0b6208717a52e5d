package validator

import (
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/dlclark/regexp2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// verdictCacheSize bounds the number of remembered match outcomes per engine.
const verdictCacheSize = 4096

type verdictKey [sha256.Size]byte

type verdict struct {
	matched  bool
	timedOut bool
}

// ecmaEngine compiles ECMA-262 patterns whose matches give up after timeout.
//
// With a timeout, the outcome of the first match of a pattern against a
// string is remembered and reused, so that repeated evaluations of the same
// value report the same failure even when a match runs close to the limit.
type ecmaEngine struct {
	timeout  time.Duration
	verdicts *lru.Cache[verdictKey, verdict]
}

func newECMAEngine(timeout time.Duration) *ecmaEngine {
	e := &ecmaEngine{timeout: timeout}
	if timeout > 0 {
		e.verdicts, _ = lru.New[verdictKey, verdict](verdictCacheSize)
	}
	return e
}

func (e *ecmaEngine) regexp(pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		return nil, err
	}
	if e.timeout > 0 {
		re.MatchTimeout = e.timeout
	}
	return re, nil
}

func (e *ecmaEngine) compile(pattern string) (jsonschema.Regexp, error) {
	re, err := e.regexp(pattern)
	if err != nil {
		return nil, err
	}
	return &ecmaRegexp{re: re, engine: e}, nil
}

func (e *ecmaEngine) match(re *regexp2.Regexp, s string) verdict {
	if e.verdicts == nil {
		matched, err := re.MatchString(s)
		return verdict{matched: err == nil && matched}
	}
	k := keyOf(re.String(), s)
	if v, ok := e.verdicts.Get(k); ok {
		return v
	}
	matched, err := re.MatchString(s)
	v := verdict{matched: err == nil && matched, timedOut: err != nil}
	// the first outcome stored for a pair wins over concurrent ones
	if prev, ok, _ := e.verdicts.PeekOrAdd(k, v); ok {
		return prev
	}
	return v
}

// timedOut reports whether matching s against pattern gave up. Outcomes that
// were evicted are computed again.
func (e *ecmaEngine) timedOut(pattern, s string) bool {
	if e.verdicts == nil {
		return false
	}
	if v, ok := e.verdicts.Get(keyOf(pattern, s)); ok {
		return v.timedOut
	}
	re, err := e.regexp(pattern)
	if err != nil {
		return false
	}
	return e.match(re, s).timedOut
}

func keyOf(pattern, s string) verdictKey {
	h := sha256.New()
	h.Write(binary.AppendUvarint(nil, uint64(len(pattern))))
	h.Write([]byte(pattern))
	h.Write([]byte(s))
	var k verdictKey
	h.Sum(k[:0])
	return k
}

type ecmaRegexp struct {
	re     *regexp2.Regexp
	engine *ecmaEngine
}

func (r *ecmaRegexp) MatchString(s string) bool {
	return r.engine.match(r.re, s).matched
}

func (r *ecmaRegexp) String() string {
	return r.re.String()
}
