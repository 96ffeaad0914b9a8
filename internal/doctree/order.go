package doctree

import (
	"cmp"
	"io/fs"
	"slices"
	"strings"

	"github.com/sha1n/docshelf/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// nameOrder compares names with a root-locale collator that ignores case and
// accents and compares digit runs numerically ("2" < "10").
// A collator keeps internal buffers, so a nameOrder must not be shared between goroutines.
type nameOrder struct {
	collator *collate.Collator
}

func newNameOrder() *nameOrder {
	return &nameOrder{
		collator: collate.New(language.Und, collate.Numeric, collate.IgnoreCase, collate.IgnoreDiacritics),
	}
}

// compare orders by collation, falling back to byte order so that names the
// collator considers equal ("A.html", "a.html") still have a fixed order.
func (o *nameOrder) compare(a, b string) int {
	if c := o.collator.CompareString(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// compareNodes implements the sibling order:
// directories before documents, directories by name, documents by their first
// number and then by name.
func (o *nameOrder) compareNodes(a, b *domain.TreeNode) int {
	if a.Kind != b.Kind {
		if a.IsDirectory() {
			return -1
		}
		return 1
	}
	if a.IsDocument() {
		if c := compareNumberKeys(a.Name, b.Name); c != 0 {
			return c
		}
	}
	return o.compare(a.Name, b.Name)
}

// CompareNames compares two names with the natural, case-insensitive order used for directories.
func CompareNames(a, b string) int {
	return newNameOrder().compare(a, b)
}

// SortNodes sorts sibling nodes in place into published order.
func SortNodes(nodes []*domain.TreeNode) {
	order := newNameOrder()
	slices.SortStableFunc(nodes, order.compareNodes)
}

// sortEntries sorts a raw directory listing by natural name order.
func sortEntries(entries []fs.DirEntry) {
	order := newNameOrder()
	slices.SortStableFunc(entries, func(a, b fs.DirEntry) int {
		return order.compare(a.Name(), b.Name())
	})
}

// firstNumber returns the first run of ASCII digits in name with leading
// zeros removed ("007" -> "7", "000" -> "0").
func firstNumber(name string) (string, bool) {
	start := -1
	for i := 0; i < len(name); i++ {
		isDigit := name[i] >= '0' && name[i] <= '9'
		switch {
		case isDigit && start < 0:
			start = i
		case !isDigit && start >= 0:
			return trimLeadingZeros(name[start:i]), true
		}
	}
	if start >= 0 {
		return trimLeadingZeros(name[start:]), true
	}
	return "", false
}

func trimLeadingZeros(digits string) string {
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// compareNumberKeys orders names by their first number. A name without digits
// sorts after every name with digits. Numbers of any length compare exactly.
func compareNumberKeys(a, b string) int {
	na, okA := firstNumber(a)
	nb, okB := firstNumber(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	if c := cmp.Compare(len(na), len(nb)); c != 0 {
		return c
	}
	return strings.Compare(na, nb)
}
