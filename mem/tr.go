package mem

import (
	"bufio"
	"io"
)

// trCommand translates characters of set1 in stdin to those of set2.
func trCommand(c *cmd) int {
	if len(c.args) != 3 {
		return 1
	}
	from := expandSet(c.args[1])
	to := expandSet(c.args[2])
	if len(to) == 0 {
		return 1
	}
	table := make(map[rune]rune, len(from))
	for i, r := range from {
		if i < len(to) {
			table[r] = to[i]
		} else {
			// If set2 is shorter, repeat last character.
			table[r] = to[len(to)-1]
		}
	}

	in := bufio.NewReader(c.stdin)
	out := bufio.NewWriter(c.stdout)
	for {
		r, _, err := in.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 1
		}
		if t, ok := table[r]; ok {
			r = t
		}
		if _, err := out.WriteRune(r); err != nil {
			return 1
		}
	}
	if err := out.Flush(); err != nil {
		return 1
	}
	return 0
}

// expandSet expands character ranges like a-z into individual characters.
func expandSet(s string) []rune {
	var result []rune
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		if i+2 < len(runes) && runes[i+1] == '-' {
			start, end := runes[i], runes[i+2]
			if start <= end {
				for r := start; r <= end; r++ {
					result = append(result, r)
				}
			} else {
				for r := start; r >= end; r-- {
					result = append(result, r)
				}
			}
			i += 2 // Skip the '-' and end character.
		} else {
			result = append(result, runes[i])
		}
	}

	return result
}
