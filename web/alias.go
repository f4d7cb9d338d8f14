package web

import (
	"fmt"
	"strings"
)

// characters between '!' and 'z' which need escaping in a path segment
const reservedInPath = "\"#%&/:;<=>?@[\\]^`"

// LegalAlias is true if alias can be used as path segment without escaping
func LegalAlias(alias string) bool {
	return alias != "" && strings.IndexFunc(alias, func(r rune) bool { return !legalInPath(r) }) < 0
}

// MakeLegalAlias percent-encodes every byte of a tester name which is not
// allowed in a path segment. The second value is false if anything but spaces
// had to be encoded.
func MakeLegalAlias(name string) (string, bool) {
	if name == "" {
		return "%00", false
	}

	var alias strings.Builder
	onlySpaces := true

	for i := 0; i < len(name); i++ {
		b := name[i]
		if legalInPath(rune(b)) {
			alias.WriteByte(b)
			continue
		}

		onlySpaces = onlySpaces && b == ' '
		fmt.Fprintf(&alias, "%%%02X", b)
	}

	return alias.String(), onlySpaces
}

func legalInPath(r rune) bool {
	return r >= '!' && r <= 'z' && !strings.ContainsRune(reservedInPath, r)
}
