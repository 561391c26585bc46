// Package report renders the halaqa's daily summary message and the Arabic
// date strings it is built from. Everything here is pure text formatting.
package report

import (
	"strconv"
	"strings"
)

var arabicIndic = strings.NewReplacer(
	"0", "٠", "1", "١", "2", "٢", "3", "٣", "4", "٤",
	"5", "٥", "6", "٦", "7", "٧", "8", "٨", "9", "٩",
)

// ArabicDigits replaces every ASCII digit in s with its Arabic-Indic form.
func ArabicDigits(s string) string {
	return arabicIndic.Replace(s)
}

// ArabicNumber formats n with Arabic-Indic digits.
func ArabicNumber(n int) string {
	return ArabicDigits(strconv.Itoa(n))
}
