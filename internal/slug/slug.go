package slug

import "strings"

// Normalize приводит произвольную строку к URL-безопасному виду:
// буквы переводятся в нижний регистр, пробелы заменяются дефисами,
// все символы вне [a-z0-9-] удаляются, повторные дефисы схлопываются,
// крайние дефисы отрезаются.
// Функция тотальна и идемпотентна: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = strings.TrimSpace(s)

	var b strings.Builder
	b.Grow(len(s))

	prevHyphen := false
	for _, r := range s {
		var out byte
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '-'
		case r == '-':
			out = '-'
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = byte(r)
		case r >= 'A' && r <= 'Z':
			out = byte(r) + ('a' - 'A')
		default:
			// Символ вне допустимого набора — пропускаем
			continue
		}

		if out == '-' {
			if prevHyphen {
				continue
			}
			prevHyphen = true
		} else {
			prevHyphen = false
		}
		b.WriteByte(out)
	}

	return strings.Trim(b.String(), "-")
}

// Build соединяет сегменты слага одиночным дефисом,
// пропуская пустые сегменты.
func Build(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "-")
}
