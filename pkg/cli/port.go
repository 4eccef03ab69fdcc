package cli

import "math"

// ParsePort converts a port argument the way C atoi does: leading whitespace
// is skipped, an optional sign is accepted, and digits are read up to the first
// non-digit. Input without leading digits yields 0, which binds an ephemeral
// port. Values outside 0..65535 are returned as is and fail at bind.
func ParsePort(s string) int {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}

	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := int(s[i] - '0')
		// Saturate at MaxInt32 on every platform; anything this large fails at bind.
		if n > (math.MaxInt32-d)/10 {
			n = math.MaxInt32
			continue
		}
		n = n*10 + d
	}

	if neg {
		return -n
	}
	return n
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
