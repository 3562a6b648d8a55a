package docparser

import "strings"

const DefaultChunkSize = 600

// Split cuts text into chunks of at most chunkSize runes, preferring
// paragraph then sentence boundaries. overlap runes from the tail of a
// chunk are repeated at the head of the next one.
func Split(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	var blocks []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		blocks = append(blocks, splitBlock(para, chunkSize)...)
	}

	// merge small neighbors so chunks stay close to chunkSize
	var merged []string
	var cur strings.Builder
	for _, b := range blocks {
		if cur.Len() > 0 && len([]rune(cur.String()))+len([]rune(b))+1 > chunkSize {
			merged = append(merged, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n")
		}
		cur.WriteString(b)
	}
	if cur.Len() > 0 {
		merged = append(merged, cur.String())
	}

	if overlap == 0 || len(merged) < 2 {
		return merged
	}

	result := make([]string, 0, len(merged))
	result = append(result, merged[0])
	for i := 1; i < len(merged); i++ {
		prev := []rune(merged[i-1])
		tail := prev
		if len(prev) > overlap {
			tail = prev[len(prev)-overlap:]
		}
		result = append(result, string(tail)+merged[i])
	}
	return result
}

func splitBlock(block string, chunkSize int) []string {
	runes := []rune(block)
	if len(runes) <= chunkSize {
		return []string{block}
	}

	var out []string
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			break
		}
		cut := end
		for i := end; i > start; i-- {
			switch runes[i-1] {
			case '。', '.', '!', '！', '?', '？', '\n', ';', '；':
				cut = i
				i = start // break outer search
			}
		}
		out = append(out, string(runes[start:cut]))
		start = cut
	}
	return out
}
