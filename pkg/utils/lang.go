package utils

import (
	"github.com/abadojack/whatlanggo"
)

const (
	LANGUAGE_EN = "English"
	LANGUAGE_CN = "Chinese"
)

// DetectLanguage guesses the natural language of the given text so the
// answer prompt can ask the model to reply in the same language.
func DetectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if info.Lang == whatlanggo.Cmn {
		return LANGUAGE_CN
	}
	return LANGUAGE_EN
}
