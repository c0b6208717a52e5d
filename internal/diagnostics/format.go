package diagnostics

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// display renders a value as compact JSON.
func display(v any) string {
	b, err := json.MarshalNoEscape(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// displayList renders values as a comma separated list of JSON values.
func displayList[T any](vs []T) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = display(v)
	}
	return strings.Join(parts, ", ")
}

// displayRat renders a schema-side number. Integers keep full precision.
func displayRat(r *big.Rat) string {
	if r == nil {
		return "0"
	}
	if r.IsInt() {
		return r.Num().String()
	}
	f, _ := r.Float64()
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func displayInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
