package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/askbase-ai/askbase-ai/pkg/utils"
)

func TestStripNulChars(t *testing.T) {
	assert.Equal(t, "hello world", utils.StripNulChars("hello\x00 world\x00"))
	assert.Equal(t, "clean", utils.StripNulChars("clean"))
}

func TestBrief(t *testing.T) {
	assert.Equal(t, "abc", utils.Brief("abc", 200))

	long := make([]rune, 0, 300)
	for i := 0; i < 300; i++ {
		long = append(long, '测')
	}
	brief := utils.Brief(string(long), 200)
	assert.Equal(t, 200, len([]rune(brief)))
}

func TestDayInt(t *testing.T) {
	day := time.Date(2025, 3, 7, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 20250307, utils.DayInt(day))
}

func TestParseAcceptLanguage(t *testing.T) {
	res := utils.ParseAcceptLanguage("zh-CN;q=0.8,en-US")
	assert.Len(t, res, 2)
	assert.Equal(t, "en-US", res[0].Tag)
	assert.Equal(t, "zh-CN", res[1].Tag)
}

func TestRandomStr(t *testing.T) {
	assert.Len(t, utils.RandomStr(32), 32)
}
